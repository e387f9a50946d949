package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/wishwell/pkg/middleware"
)

// Claims represents the JWT claims of an access token issued by the identity
// provider. The subject is the canonical user ID.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager validates access tokens. Token issuance belongs to the identity
// provider; this service only verifies.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a new JWT manager with the given signing secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{secret: []byte(secret)}
}

// ValidateToken parses and validates an access token, returning the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token missing subject")
	}

	return claims, nil
}

// Validator adapts the manager to the middleware contract.
func (m *JWTManager) Validator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.Subject, Email: claims.Email}, nil
	}
}
