package response

// Shared client-facing messages
const (
	MsgNoToken         = "Access denied. No token provided. Please login first."
	MsgTokenInvalid    = "Invalid token"
	MsgTokenExpired    = "Token expired. Please login again."
	MsgTokenRevoked    = "Token has been revoked. Please login again."
	MsgUserNotFound    = "Invalid token. User not found."
	MsgNotAuthed       = "User not authenticated"
	MsgAdminOnly       = "Access denied. Admin only."
	MsgInvalidParam    = "Invalid request body"
	MsgServerInternal  = "Internal server error"
	MsgTooManyRequests = "Too many requests"
	MsgRouteNotFound   = "Route not found"
)
