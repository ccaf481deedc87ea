package service

import (
	"time"

	"github.com/retailsetu/delivery-engine/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the token payload issued by the account service. The
// engine only consumes it: user id and role drive every authorization
// decision.
type SessionClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for a user. Used by the seed
// command and tests; production tokens come from the account service.
func IssueSessionToken(secretKey string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
