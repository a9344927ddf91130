package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/citypulse/citypulse/internal/apperr"
)

// TokenTTL is how long issued access tokens stay valid.
const TokenTTL = 24 * time.Hour

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	secret []byte
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// GenerateToken issues a token for the user carrying their role and the
// permissions resolved for that role.
func (s *JWTService) GenerateToken(user User, permissions []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        user.Role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Internalf("signing token: %v", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, rejecting anything not signed
// with this service's HMAC key.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Auth("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Auth("Invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Auth("Invalid or expired token")
	}
	return claims, nil
}
