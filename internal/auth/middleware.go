package auth

import (
	"strings"

	"rental-backend/internal/config"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CtxUserIDKey    = "user_id"
	CtxUserRoleKey  = "user_role"
	CtxCompanyIDKey = "company_id"
)

// JWTMiddleware rejects requests without a valid bearer token with 401, the status clients
// react to by tearing their session down.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			middleware.Logger(c).Warn("rejected token", zap.Error(err))
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxCompanyIDKey, claims.CompanyID)
		middleware.SetLogger(c, middleware.Logger(c).With(zap.Uint("user_id", claims.UserID)))

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from token")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to perform this action")
	}
}

// Identity is the caller as described by the validated token.
type Identity struct {
	UserID    uint
	Role      models.UserRole
	CompanyID *uint
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// CanAccessUser reports whether the caller may act on the given user's resources.
func (i Identity) CanAccessUser(userID uint) bool {
	return i.IsAdmin() || i.UserID == userID
}

// CurrentIdentity reads the identity stored by JWTMiddleware.
func CurrentIdentity(c *fiber.Ctx) (Identity, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || userID == 0 {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "user missing from token")
	}
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	companyID, _ := c.Locals(CtxCompanyIDKey).(*uint)
	return Identity{UserID: userID, Role: role, CompanyID: companyID}, nil
}
