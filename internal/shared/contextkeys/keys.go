package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "workly-web context key " + string(c)
}

// ClientIDKey identifies the browser (client context) a request belongs to.
const ClientIDKey = contextKey("clientID")

// UserIDKey is the key for the authenticated user's ID in context.Context
const UserIDKey = contextKey("userID")

// OrganizationIDKey is the key for the organization a dashboard request targets
const OrganizationIDKey = contextKey("organizationID")

// RequestIDKey is the key for the request ID assigned by the requestid middleware
const RequestIDKey = contextKey("requestID")

// TokenKey is the key for the raw credential cookie value
const TokenKey = contextKey("token")

// OperationKey names the route a log line was written for.
const OperationKey = contextKey("operation")
