package model

// Reasons attached to session lifecycle events.
const (
	ReasonLogin        = "login"
	ReasonLogout       = "logout"
	ReasonCorrupt      = "corrupt"
	ReasonTokenExpired = "token_expired"
	ReasonTokenInvalid = "token_invalid"
	ReasonUnauthorized = "unauthorized"
	ReasonNoCredential = "no_credential"
)

// SessionEvent is the payload of every session lifecycle event.
type SessionEvent struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
