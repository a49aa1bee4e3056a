package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwtIssuer         = "todo-api"
	minJWTSecretBytes = 32
	tokenTTL          = 24 * time.Hour
)

// Claims carries the authenticated username. The numeric user id is resolved
// against the database on every request, so a token outlives neither a
// deleted nor a renamed account.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var (
	jwtSecret     []byte
	jwtSecretErr  error
	jwtSecretOnce sync.Once
)

func EnsureJWTReady() error {
	_, err := getJWTSecret()
	return err
}

func getJWTSecret() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		raw := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if raw == "" {
			jwtSecretErr = errors.New("JWT_SECRET is required")
			return
		}
		if len(raw) < minJWTSecretBytes {
			jwtSecretErr = fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretBytes)
			return
		}
		jwtSecret = []byte(raw)
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	return jwtSecret, nil
}

// GenerateToken generates a new JWT token for a username.
func GenerateToken(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("invalid username")
	}

	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates the JWT token and returns the claims.
func ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errors.New("token is empty")
	}

	secret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if strings.TrimSpace(claims.Username) == "" {
		return nil, errors.New("invalid token user")
	}

	if claims.Issuer != jwtIssuer {
		return nil, errors.New("invalid token issuer")
	}

	if claims.Subject != claims.Username {
		return nil, errors.New("invalid token subject")
	}

	return claims, nil
}
