package users

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID        uint   `json:"id"`
	CompanyID *uint  `json:"company_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Tier      string `json:"tier"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Tier     *string `json:"tier"`
	Role     *string `json:"role"` // admin only
	Password *string `json:"password"`
}

func toResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Tier:      u.Tier,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/users
func ListUsersHandler(users *repository.UserReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, err := users.GetAll(c.UserContext())
		if err != nil {
			return err
		}

		res := make([]UserResponse, 0, len(all))
		for _, u := range all {
			res = append(res, toResponse(u))
		}
		return c.JSON(res)
	}
}

// GET /api/users/:id
func GetUserHandler(users *repository.UserReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		user, err := users.GetByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*user))
	}
}

// PUT /api/users/:id
func UpdateUserHandler(db *gorm.DB, users *repository.UserReader, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		caller, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}
		if !caller.CanAccessUser(uint(id)) {
			return fiber.NewError(fiber.StatusForbidden, "you can only update your own account")
		}

		user, err := users.GetByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		before := audit.UserSnapshot(*user)
		updated := false
		passwordChanged := false

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			user.Name = name
			updated = true
		}

		if body.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*body.Email))
			if _, err := mail.ParseAddress(email); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid email")
			}
			if email != user.Email {
				existing, found, err := users.GetByEmail(c.UserContext(), email)
				if err != nil {
					return err
				}
				if found && existing.ID != user.ID {
					return fiber.NewError(fiber.StatusConflict, "email is already registered")
				}
				user.Email = email
				updated = true
			}
		}

		if body.Tier != nil {
			user.Tier = strings.TrimSpace(*body.Tier)
			updated = true
		}

		if body.Role != nil {
			if !caller.IsAdmin() {
				return fiber.NewError(fiber.StatusForbidden, "only admins can change roles")
			}
			role := models.UserRole(*body.Role)
			if role != models.RoleAdmin && role != models.RoleMember {
				return fiber.NewError(fiber.StatusBadRequest, "role must be admin or member")
			}
			user.Role = role
			updated = true
		}

		if body.Password != nil {
			if len(*body.Password) < 8 {
				return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = string(hash)
			updated = true
			passwordChanged = true
		}

		if !updated {
			return c.JSON(toResponse(*user))
		}

		after := audit.UserSnapshot(*user)
		after.PasswordChanged = passwordChanged

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(user).Error; err != nil {
				return fmt.Errorf("save user %d: %w", user.ID, err)
			}
			return auditSvc.WriteLog(c.UserContext(), tx, audit.LogOptions{
				CompanyID:   user.CompanyID,
				UserID:      caller.UserID,
				EntityType:  audit.EntityUser,
				EntityID:    user.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("User updated: %s", user.Email),
				Before:      before,
				After:       after,
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(toResponse(*user))
	}
}
