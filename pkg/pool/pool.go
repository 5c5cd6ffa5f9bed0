package pool

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PoolConfig defines connection pool configuration
type PoolConfig struct {
	ConnectionTimeout   time.Duration `json:"connection_timeout"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	IdleTimeout         time.Duration `json:"idle_timeout"`
	MaxIdleConns        int           `json:"max_idle_conns"`
	MaxIdleConnsPerHost int           `json:"max_idle_conns_per_host"`
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		ConnectionTimeout:   5 * time.Second,
		RequestTimeout:      10 * time.Second,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}
}

// ConnectionPool hands out one keep-alive HTTP client per backend host so
// every caller of the same upstream shares its idle connections.
type ConnectionPool struct {
	mu          sync.RWMutex
	httpClients map[string]*http.Client
	config      PoolConfig
	logger      *zap.Logger
}

// NewConnectionPool creates a new connection pool
func NewConnectionPool(config PoolConfig, logger *zap.Logger) *ConnectionPool {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConnectionPool{
		httpClients: make(map[string]*http.Client),
		config:      config,
		logger:      logger,
	}
}

// GetHTTPClient returns the HTTP client for the host of address. TLS is
// enabled for https addresses.
func (p *ConnectionPool) GetHTTPClient(address string) *http.Client {
	key, tlsEnabled := hostKey(address)

	p.mu.RLock()
	client, exists := p.httpClients[key]
	p.mu.RUnlock()

	if exists {
		return client
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double check after acquiring write lock
	if client, exists = p.httpClients[key]; exists {
		return client
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   p.config.ConnectionTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          p.config.MaxIdleConns,
		MaxIdleConnsPerHost:   p.config.MaxIdleConnsPerHost,
		IdleConnTimeout:       p.config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	if tlsEnabled {
		transport.TLSClientConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client = &http.Client{
		Transport: transport,
		Timeout:   p.config.RequestTimeout,
	}
	p.httpClients[key] = client

	p.logger.Info("Created new HTTP client",
		zap.String("host", key),
		zap.Bool("tls_enabled", tlsEnabled),
	)

	return client
}

// CloseAllConnections drops idle connections and forgets every client
func (p *ConnectionPool) CloseAllConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, client := range p.httpClients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
		delete(p.httpClients, key)
	}

	p.logger.Info("Closed all connections")
}

// Stats returns pool statistics
func (p *ConnectionPool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"http_clients": len(p.httpClients),
	}
}

// hostKey reduces address to scheme://host. Unparseable addresses are used
// as given.
func hostKey(address string) (string, bool) {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return address, false
	}
	return u.Scheme + "://" + u.Host, u.Scheme == "https"
}
