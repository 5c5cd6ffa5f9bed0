package constants

// HTTP Header Names
const (
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized    = "Unauthorized access"
	MsgBadRequest      = "Invalid request"
	MsgInternalError   = "Internal server error"
	MsgTooManyRequests = "Too many requests"
)

// HTTP Success Messages
const (
	MsgSuccess    = "Operation completed successfully"
	MsgLoggedIn   = "Login successful"
	MsgLoggedOut  = "Logout successful"
	MsgRegistered = "Registration successful"
	MsgRefreshed  = "Token refreshed"
)
