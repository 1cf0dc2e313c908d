package usecase

import (
	"net/url"
	"strings"
)

// SafeCallback returns raw when it is a path on this site, otherwise fallback.
// Absolute URLs, scheme-relative URLs ("//host") and backslash tricks are
// rejected so a crafted callbackUrl cannot send the user elsewhere.
func SafeCallback(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return fallback
	}
	if strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n\t") {
		return fallback
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return raw
}
