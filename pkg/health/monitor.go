package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = 30 * time.Second

// Status represents health check status
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDegraded
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDegraded:
		return "degraded"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the result of a health check
type CheckResult struct {
	Name         string        `json:"-"`
	Status       Status        `json:"status"`
	Message      string        `json:"message,omitempty"`
	Latency      time.Duration `json:"latency_ns"`
	LastCheck    time.Time     `json:"last_check"`
	LastError    error         `json:"-"`
	CheckCount   int           `json:"check_count"`
	FailureCount int           `json:"failure_count"`
}

// Checker interface for health checks
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckFunc adapts a ping function to a Checker. A nil error is healthy.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) CheckResult {
	start := time.Now()
	err := f(ctx)
	result := CheckResult{
		Status:    StatusHealthy,
		Latency:   time.Since(start),
		LastCheck: start,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.LastError = err
		result.Message = err.Error()
	}
	return result
}

// HTTPChecker checks HTTP endpoint health
type HTTPChecker struct {
	Address string
	Path    string
	Client  *http.Client
}

// Check performs HTTP health check. Any 2xx is healthy, 5xx and transport
// errors are unhealthy and everything else is degraded.
func (c *HTTPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{LastCheck: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Address+c.Path, nil)
	if err != nil {
		result.Status = StatusUnhealthy
		result.LastError = err
		result.Message = err.Error()
		result.Latency = time.Since(start)
		return result
	}

	resp, err := c.Client.Do(req)
	result.Latency = time.Since(start)

	if err != nil {
		result.Status = StatusUnhealthy
		result.LastError = err
		result.Message = err.Error()
		return result
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Status = StatusHealthy
	case resp.StatusCode >= 500:
		result.Status = StatusUnhealthy
		result.Message = resp.Status
	default:
		result.Status = StatusDegraded
		result.Message = resp.Status
	}

	return result
}

// Monitor runs registered checks periodically and keeps the latest result
// of each.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	results  map[string]*CheckResult
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

// NewMonitor creates a new health monitor
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		checkers: make(map[string]Checker),
		results:  make(map[string]*CheckResult),
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds a named checker. Registering a name twice replaces it.
func (m *Monitor) Register(name string, checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = checker

	m.logger.Info("Registered health checker", zap.String("name", name))
}

// RegisterHTTPChecker registers an HTTP health checker
func (m *Monitor) RegisterHTTPChecker(name, address, path string, client *http.Client) {
	if client == nil {
		client = &http.Client{Timeout: m.timeout}
	}

	m.Register(name, &HTTPChecker{
		Address: address,
		Path:    path,
		Client:  client,
	})
}

// MarkDisabled records name as switched off. It is reported but never
// checked.
func (m *Monitor) MarkDisabled(name, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkers, name)
	m.results[name] = &CheckResult{
		Name:      name,
		Status:    StatusDisabled,
		Message:   message,
		LastCheck: time.Now(),
	}
}

// Start starts the health monitor
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	go m.runChecks()
}

// Stop stops the health monitor
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	m.cancel()
}

func (m *Monitor) runChecks() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckAll()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll()
		}
	}
}

// CheckAll runs every registered checker once.
func (m *Monitor) CheckAll() {
	m.mu.RLock()
	checkers := make(map[string]Checker, len(m.checkers))
	for name, checker := range m.checkers {
		checkers[name] = checker
	}
	m.mu.RUnlock()

	for name, checker := range checkers {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		result := checker.Check(ctx)
		cancel()
		result.Name = name

		m.mu.Lock()
		if existing, ok := m.results[name]; ok {
			result.CheckCount = existing.CheckCount + 1
			result.FailureCount = existing.FailureCount
		} else {
			result.CheckCount = 1
		}
		if result.Status == StatusUnhealthy {
			result.FailureCount++
		}
		m.results[name] = &result
		m.mu.Unlock()

		if result.Status != StatusHealthy {
			m.logger.Warn("Health check failed",
				zap.String("name", name),
				zap.String("status", result.Status.String()),
				zap.Duration("latency", result.Latency),
				zap.Error(result.LastError),
			)
		}
	}
}

// IsHealthy reports whether name passed its last check. Names not checked
// yet count as healthy.
func (m *Monitor) IsHealthy(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if result, ok := m.results[name]; ok {
		return result.Status == StatusHealthy || result.Status == StatusDisabled
	}
	return true
}

// GetResult gets the last result for name
func (m *Monitor) GetResult(name string) (*CheckResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, exists := m.results[name]
	if !exists {
		return nil, false
	}
	resultCopy := *result
	return &resultCopy, true
}

// GetAllResults returns all health check results
func (m *Monitor) GetAllResults() map[string]*CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]*CheckResult, len(m.results))
	for name, result := range m.results {
		resultCopy := *result
		results[name] = &resultCopy
	}
	return results
}
