// Package auth provides the shared-password challenge used by the TCP
// handshake and the bearer token check guarding the admin data routes.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an admin bearer token.
type Validator interface {
	Validate(token string) error
}

// AdminToken accepts exactly one configured token. The empty token
// accepts nothing.
type AdminToken string

func (t AdminToken) Validate(token string) error {
	if t == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(t), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
