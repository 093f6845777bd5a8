/*
Package auth provides the permission tokens that gate the safety center API.

Two roles exist: [RoleSend] lets a trusted safety source push and read its own
data, and [RoleManage] lets a privileged caller read aggregated data, trigger
refreshes, dismiss issues, and toggle the center. Tokens travel in a NATS
message header and are verified by the store. Verification fails closed.
*/
package auth

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the permission a token carries
type Role string

// Valid roles
const (
	// RoleSend allows pushing source data and reading it back
	RoleSend Role = "send"
	// RoleManage allows reading aggregated data and managing the center
	RoleManage Role = "manage"
)

// HeaderName is the NATS message header tokens travel in
const HeaderName = "Authorization"

// DefaultTokenLifetime is used when a lifetime of 0 is passed to NewToken
const DefaultTokenLifetime = time.Hour * 24

// Key provides a key for signing permission tokens
type Key struct {
	bytes []byte
}

// NewKey returns a new random Key of the given size
func NewKey(size int) (Key, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return Key{}, err
	}

	return Key{bytes: b}, nil
}

// KeyFromBytes restores a key from stored bytes so tokens stay valid across
// restarts
func KeyFromBytes(b []byte) Key {
	return Key{bytes: b}
}

// Bytes returns the raw key material for persisting
func (k Key) Bytes() []byte {
	return k.bytes
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewToken returns a new permission token for the given role and source.
// Source is only meaningful for RoleSend and scopes the token to one safety
// source; empty means any source.
func (k Key) NewToken(role Role, source string, lifetime time.Duration) (string, error) {
	if lifetime == 0 {
		lifetime = DefaultTokenLifetime
	}

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   source,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			Issuer:    "safetycenter",
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.bytes)
}

// Verify checks a bearer header value and returns the role and source it
// grants. Any problem -- missing header, bad scheme, bad signature, expired
// token, unknown role -- returns an error.
func (k Key) Verify(header string) (Role, string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || fields[0] != "Bearer" {
		return "", "", fmt.Errorf("malformed authorization header")
	}

	c := claims{}

	token, err := jwt.ParseWithClaims(fields[1], &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return k.bytes, nil
	})

	if err != nil {
		return "", "", err
	}

	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	switch Role(c.Role) {
	case RoleSend, RoleManage:
	default:
		return "", "", fmt.Errorf("unknown role: %v", c.Role)
	}

	return Role(c.Role), c.Subject, nil
}

// Bearer formats a token as a header value
func Bearer(token string) string {
	return "Bearer " + token
}
