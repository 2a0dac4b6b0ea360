// Package auth provides bearer-token validation and password hashing
// for the collaborator boundary that produces request principals.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the service accepts. The token carries
// only the user's identity; authorization-relevant attributes
// (is_admin) are loaded from the store on every request so a stale
// token never grants stale privileges.
type Claims struct {
	jwt.RegisteredClaims

	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}
