package auth

import (
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type CompanyResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Address string `json:"address"`
}

type MeResponse struct {
	ID      uint             `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Role    string           `json:"role"`
	Tier    string           `json:"tier"`
	Company *CompanyResponse `json:"company"`
}

// GET /api/auth/me
func MeHandler(users *repository.UserReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := CurrentIdentity(c)
		if err != nil {
			return err
		}

		profile, err := users.GetProfile(c.UserContext(), id.UserID)
		if err != nil {
			return err
		}

		resp := MeResponse{
			ID:    profile.UserID,
			Name:  profile.Name,
			Email: profile.Email,
			Role:  string(profile.Role),
			Tier:  profile.Tier,
		}
		if profile.CompanyID != nil && profile.CompanyName != nil {
			resp.Company = &CompanyResponse{
				ID:      *profile.CompanyID,
				Name:    *profile.CompanyName,
				Tier:    deref(profile.CompanyTier),
				Address: deref(profile.CompanyAddress),
			}
		}

		return c.JSON(resp)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
