package security

import (
	"context"
	"errors"
	"strings"
	"time"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = apperrors.ErrInvalidToken
	ErrTokenExpired = apperrors.ErrTokenExpired
)

var _ repository.TokenInspector = (*JWTInspector)(nil)

// JWTInspector checks persisted tokens for expiry. Tokens that are not JWTs are
// opaque and always accepted. With a secret configured, JWTs must also carry
// a valid HMAC signature.
type JWTInspector struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTInspector creates an inspector; secret may be empty.
func NewJWTInspector(secret string) *JWTInspector {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &JWTInspector{secretKey: key, now: time.Now}
}

// Validate returns nil when token can be trusted, ErrTokenExpired or ErrTokenInvalid otherwise.
func (i *JWTInspector) Validate(ctx context.Context, token string) error {
	if !looksLikeJWT(token) {
		return nil
	}
	if i.secretKey != nil {
		return i.verify(token)
	}
	return i.checkExpiry(token)
}

func (i *JWTInspector) verify(token string) error {
	_, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secretKey, nil
	}, jwt.WithTimeFunc(i.now))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

func (i *JWTInspector) checkExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Three dot separated parts that do not decode: treat as opaque.
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return ErrTokenInvalid
	}
	if exp != nil && !i.now().Before(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2 && !strings.ContainsAny(token, " \t\n")
}
