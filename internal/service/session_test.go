package service

import (
	"testing"
	"time"

	"github.com/retailsetu/delivery-engine/internal/constants"
	"github.com/retailsetu/delivery-engine/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueSessionTokenRoundTrip(t *testing.T) {
	secret := "test-session-secret-0123456789abcdef"
	user := &models.User{ID: 42, Role: constants.RoleDeliveryPartner}

	signed, err := IssueSessionToken(secret, user, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse signed token failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id want 42 got %d", claims.UserID)
	}
	if claims.Role != constants.RoleDeliveryPartner {
		t.Fatalf("role want %s got %s", constants.RoleDeliveryPartner, claims.Role)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("token should expire in the future")
	}
}

func TestIssueSessionTokenRejectedWithWrongSecret(t *testing.T) {
	signed, err := IssueSessionToken("secret-one-0123456789abcdef000000", &models.User{ID: 1, Role: constants.RoleRetailer}, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err = parser.ParseWithClaims(signed, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret-0123456789abcd"), nil
	})
	if err == nil {
		t.Fatalf("token signed with another secret should not verify")
	}
}
