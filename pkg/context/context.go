package ctxutil

import (
	"context"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
)

// Re-export ContextKey type
type ContextKey = constants.ContextKey

// Re-export context keys
const (
	RequestIDKey   = constants.CtxKeyRequestID
	ClientIPKey    = constants.CtxKeyClientIP
	UserAgentKey   = constants.CtxKeyUserAgent
	StartTimeKey   = constants.CtxKeyStartTime
	ModuleKey      = constants.CtxKeyModule
	FunctionKey    = constants.CtxKeyFunction
	SessionIDKey   = constants.CtxKeySessionID
	AccessTokenKey = constants.CtxKeyAccessToken
	UserLoginKey   = constants.CtxKeyUserLogin
)

// WithValue adds a value to context
func WithValue(ctx context.Context, key ContextKey, value interface{}) context.Context {
	return context.WithValue(ctx, key, value)
}

// WithSessionID adds the authenticated session id to context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithAccessToken stores the upstream access token that outgoing calls
// should present.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

// Getter functions
func GetRequestID(ctx context.Context) string {
	if val, ok := ctx.Value(RequestIDKey).(string); ok {
		return val
	}
	return ""
}

func GetClientIP(ctx context.Context) string {
	if val, ok := ctx.Value(ClientIPKey).(string); ok {
		return val
	}
	return ""
}

func GetUserAgent(ctx context.Context) string {
	if val, ok := ctx.Value(UserAgentKey).(string); ok {
		return val
	}
	return ""
}

func GetSessionID(ctx context.Context) string {
	if val, ok := ctx.Value(SessionIDKey).(string); ok {
		return val
	}
	return ""
}

func GetAccessToken(ctx context.Context) string {
	if val, ok := ctx.Value(AccessTokenKey).(string); ok {
		return val
	}
	return ""
}

func GetStartTime(ctx context.Context) time.Time {
	if val, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return val
	}
	return time.Time{}
}

func GetModule(ctx context.Context) string {
	if val, ok := ctx.Value(ModuleKey).(string); ok {
		return val
	}
	return ""
}

func GetFunction(ctx context.Context) string {
	if val, ok := ctx.Value(FunctionKey).(string); ok {
		return val
	}
	return ""
}

func GetUserLogin(ctx context.Context) string {
	if val, ok := ctx.Value(UserLoginKey).(string); ok {
		return val
	}
	return ""
}

// GetDuration calculates duration from start time
func GetDuration(ctx context.Context) time.Duration {
	startTime := GetStartTime(ctx)
	if !startTime.IsZero() {
		return time.Since(startTime)
	}
	return 0
}

// NewContextWithRequest tags ctx with the module and function handling the
// request and stamps a start time if none is set.
func NewContextWithRequest(ctx context.Context, module, function string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = context.WithValue(ctx, ModuleKey, module)
	ctx = context.WithValue(ctx, FunctionKey, function)

	if GetStartTime(ctx).IsZero() {
		ctx = context.WithValue(ctx, StartTimeKey, time.Now())
	}

	return ctx
}
