package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails validation
var ErrInvalidToken = errors.New("invalid token")

// Config configures JWT validation
type Config struct {
	// Secret is the HS256 shared secret
	Secret string `yaml:"secret"`

	// Issuer, when set, must match the token's iss claim
	Issuer string `yaml:"issuer"`
}

// Validate checks the config
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

// JWTValidator validates HS256 bearer tokens
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a validator from the given configuration
func NewJWTValidator(cfg *Config) (*JWTValidator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &JWTValidator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}, nil
}

// Validate parses and validates a token string and returns its claims
func (v *JWTValidator) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	if v.issuer != "" {
		if issuer, err := claims.GetIssuer(); err != nil || issuer != v.issuer {
			return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
		}
	}

	return claims, nil
}

// keyFunc pins the algorithm to HS256 to prevent algorithm confusion
func (v *JWTValidator) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return v.secret, nil
}
