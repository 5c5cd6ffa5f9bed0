package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextKeyRequestBody holds the decoded and validated request body.
const ContextKeyRequestBody = "request_body"

// maxBodyBytes caps the size of a JSON request body.
const maxBodyBytes = 1 << 20

type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidateRequestBody decodes the JSON body into factory() and validates it.
// Failures answer 400 with one message per field; on success the value is
// available through RequestBody.
func (m *ValidationMiddleware) ValidateRequestBody(factory func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
			if err != nil {
				logger.GetLogger().Error("Middleware: Failed to read request body",
					zap.String("client_ip", clientIP),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
				return
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		request := factory()
		if len(bytes.TrimSpace(bodyBytes)) > 0 {
			if err := json.Unmarshal(bodyBytes, request); err != nil {
				logger.GetLogger().Debug("Middleware: JSON unmarshaling failed",
					zap.String("client_ip", clientIP),
					zap.String("path", c.Request.URL.Path),
					zap.Int("body_size", len(bodyBytes)),
					zap.Error(err),
				)
				c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidJSON, err.Error()))
				return
			}
		}

		fieldErrors, err := m.validator.Struct(request)
		if err != nil {
			logger.GetLogger().Error("Middleware: Validator failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildErrorResponse(constants.MsgInternalError, nil))
			return
		}
		if len(fieldErrors) > 0 {
			logger.GetLogger().Debug("Middleware: Request validation failed",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Any("validation_errors", fieldErrors),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgValidationFailed, fieldErrors))
			return
		}

		c.Set(ContextKeyRequestBody, request)
		c.Next()
	}
}

// RequestBody returns the body validated by ValidateRequestBody. The factory
// must have returned a *T.
func RequestBody[T any](c *gin.Context) (*T, bool) {
	value, exists := c.Get(ContextKeyRequestBody)
	if !exists {
		return nil, false
	}
	body, ok := value.(*T)
	return body, ok
}
