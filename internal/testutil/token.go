package testutil

import (
	"testing"
	"time"

	"rental-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Secret is long enough to pass config validation.
const Secret = "test-secret-with-at-least-32-characters!"

// claims mirrors the payload auth.ParseToken expects. auth is not imported so that
// packages below it can use testutil.
type claims struct {
	UserID    uint            `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CompanyID *uint           `json:"company_id"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for u, valid for one hour.
func SignToken(t *testing.T, secret string, u models.User) string {
	t.Helper()

	c := claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
