package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/circuit"
	"github.com/Payphone-Digital/storefront/pkg/health"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Names of the checks registered with the health monitor.
const (
	CheckDatabase = "database"
	CheckRedis    = "redis"
	CheckUpstream = "upstream"
)

// HealthReporter is implemented by health.Monitor.
type HealthReporter interface {
	GetAllResults() map[string]*health.CheckResult
}

// CircuitReporter is implemented by upstream.Client.
type CircuitReporter interface {
	Circuits() []circuit.Snapshot
}

type HealthHandler struct {
	monitor  HealthReporter
	upstream CircuitReporter
	version  string
	now      func() time.Time
}

type HealthCheckResponse struct {
	Status    string                         `json:"status"`
	Version   string                         `json:"version"`
	Timestamp time.Time                      `json:"timestamp"`
	Checks    map[string]*health.CheckResult `json:"checks"`
	Circuits  []circuit.Snapshot             `json:"circuits,omitempty"`
}

func NewHealthHandler(monitor HealthReporter, upstream CircuitReporter) *HealthHandler {
	return &HealthHandler{
		monitor:  monitor,
		upstream: upstream,
		version:  constants.AppVersion,
		now:      time.Now,
	}
}

// HealthCheck reports the last result of every monitored dependency. The
// database and the upstream API are required; redis is optional.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthCheckResponse{
		Status:    health.StatusHealthy.String(),
		Version:   h.version,
		Timestamp: h.now(),
		Checks:    h.monitor.GetAllResults(),
	}

	for _, name := range []string{CheckDatabase, CheckUpstream} {
		if result, ok := response.Checks[name]; ok && result.Status == health.StatusUnhealthy {
			response.Status = health.StatusUnhealthy.String()
		}
	}

	if h.upstream != nil {
		response.Circuits = h.upstream.Circuits()
	}
	for _, snapshot := range response.Circuits {
		if snapshot.State == circuit.StateOpen && response.Status == health.StatusHealthy.String() {
			response.Status = health.StatusDegraded.String()
		}
	}
	if result, ok := response.Checks[CheckRedis]; ok && result.Status == health.StatusUnhealthy &&
		response.Status == health.StatusHealthy.String() {
		response.Status = health.StatusDegraded.String()
	}

	statusCode := http.StatusOK
	if response.Status == health.StatusUnhealthy.String() {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

// BasicHealth returns a simple health check (for load balancers)
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    health.StatusHealthy.String(),
		"version":   h.version,
		"timestamp": h.now(),
	})
}
