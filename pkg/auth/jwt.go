package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager issues and validates access tokens for the HTTP API. There is
// no user database: a caller exchanges the configured API key for a token.
type JWTManager struct {
	secretKey  string
	apiKey     string
	expiration time.Duration
}

type Claims struct {
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey, apiKey string, expiration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  secretKey,
		apiKey:     apiKey,
		expiration: expiration,
	}
}

// Exchange verifies the presented API key and issues a signed token.
func (m *JWTManager) Exchange(apiKey string) (string, error) {
	if m.apiKey == "" {
		return "", fmt.Errorf("api access is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(m.apiKey)) != 1 {
		return "", fmt.Errorf("invalid api key")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "receipt-vault-api",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ValidateToken parses and verifies a token produced by Exchange.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
