package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// slowRequest is the latency above which a request is logged as slow.
const slowRequest = 2 * time.Second

// Logging logs every request through zap and records the HTTP metrics.
// Routes are labelled by their template so ids do not explode cardinality.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		ctx := c.Request.Context()
		var entry *logger.ContextLogBuilder
		switch {
		case status >= http.StatusInternalServerError:
			entry = logger.ErrorWithContext(ctx, "Server error")
		case status >= http.StatusBadRequest:
			entry = logger.WarnWithContext(ctx, "Client error")
		case latency > slowRequest:
			entry = logger.WarnWithContext(ctx, "Slow request")
		default:
			entry = logger.InfoWithContext(ctx, "Request completed")
		}

		entry.Method(c.Request.Method).
			Path(c.Request.URL.Path).
			String("route", route).
			String("query", c.Request.URL.RawQuery).
			StatusCode(status).
			Int("response_size", c.Writer.Size()).
			Duration(latency)
		if len(c.Errors) > 0 {
			entry.String("errors", c.Errors.String())
		}
		entry.Log()
	}
}

// Recovery recovers from panics and logs them.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogPanic(recovered)

		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildErrorResponse(constants.MsgInternalError, nil))
	})
}

// SecurityLogging logs scanner-like user agents and sign-in attempts.
func SecurityLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		userAgent := c.Request.UserAgent()

		if isSuspiciousUserAgent(userAgent) {
			logger.GetLogger().Warn("Suspicious user agent detected",
				zap.String("client_ip", clientIP),
				zap.String("user_agent", userAgent),
				zap.String("path", c.Request.URL.Path),
			)
		}

		if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
			logger.GetLogger().Info("Auth attempt",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", clientIP),
				zap.String("user_agent", userAgent),
			)
		}

		c.Next()
	}
}

// isSuspiciousUserAgent checks for common scanner user agents.
func isSuspiciousUserAgent(userAgent string) bool {
	suspiciousPatterns := []string{
		"sqlmap", "nikto", "nmap", "masscan", "burp", "scanner",
	}

	ua := strings.ToLower(userAgent)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
