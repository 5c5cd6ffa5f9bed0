package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// Context Keys for request tracking and metadata
const (
	CtxKeyRequestID   ContextKey = "request_id"
	CtxKeyClientIP    ContextKey = "client_ip"
	CtxKeyUserAgent   ContextKey = "user_agent"
	CtxKeyStartTime   ContextKey = "start_time"
	CtxKeyModule      ContextKey = "module"
	CtxKeyFunction    ContextKey = "function"
	CtxKeySessionID   ContextKey = "session_id"
	CtxKeyAccessToken ContextKey = "access_token"
	CtxKeyUserLogin   ContextKey = "user_login"
)
