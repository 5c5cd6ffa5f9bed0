package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Payphone-Digital/storefront/internal/constants"
	apperrors "github.com/Payphone-Digital/storefront/internal/errors"
	"github.com/Payphone-Digital/storefront/internal/model"
	ctxutil "github.com/Payphone-Digital/storefront/pkg/context"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys set by RequireAuth
const (
	ContextKeySessionID = "session_id"
	ContextKeyUserID    = "user_id"
)

// Authenticator resolves a session token to its session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

type JWTMiddleware struct {
	auth Authenticator
}

func NewJWTMiddleware(auth Authenticator) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// RequireAuth validates the session token and places the session id and the
// upstream access token on the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			logger.GetLogger().Warn("Missing or malformed Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
			return
		}

		session, err := m.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.GetLogger().Warn("Session token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.AbortWithStatusJSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
			return
		}

		ctx := ctxutil.WithSessionID(c.Request.Context(), session.ID)
		ctx = ctxutil.WithAccessToken(ctx, session.AccessToken)
		ctx = ctxutil.WithValue(ctx, ctxutil.UserLoginKey, session.Profile.Data().Email)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextKeySessionID, session.ID)
		c.Set(ContextKeyUserID, session.UserID)

		logger.GetLogger().Debug("Session authenticated",
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID),
			zap.String("path", c.Request.URL.Path))

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
