package utils

import (
	"context"
	"errors"

	"workly-web/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrClientIDNotFound   = errors.New("clientID not found in context")
	ErrClientIDNotString  = errors.New("clientID in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
	ErrTokenNotFound      = errors.New("token not found in context")
	ErrTokenNotString     = errors.New("token in context is not a string")
)

func stringValue(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetClientIDFromContext retrieves the client context ID from the context.
// It returns an error if the ID is not present or is not a string.
func GetClientIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.ClientIDKey, ErrClientIDNotFound, ErrClientIDNotString)
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetTokenFromContext retrieves the raw credential cookie value from the context.
func GetTokenFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.TokenKey, ErrTokenNotFound, ErrTokenNotString)
}

// Context builder functions

// WithClientID adds the client context ID to context
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, contextkeys.ClientIDKey, clientID)
}

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// WithOrganizationID adds organization ID to context
func WithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, contextkeys.OrganizationIDKey, organizationID)
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithToken adds the raw credential cookie value to context
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextkeys.TokenKey, token)
}

// WithOperation adds operation name to context
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// GetTokenOrDefault retrieves the credential token from context or returns a default value
func GetTokenOrDefault(ctx context.Context, def string) string {
	if v, err := GetTokenFromContext(ctx); err == nil {
		return v
	}
	return def
}
