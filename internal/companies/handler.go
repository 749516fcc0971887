package companies

import (
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type CompanyResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Tier      string `json:"tier"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type MemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GET /api/companies/:id
func GetCompanyHandler(companies *repository.CompanyReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid company id")
		}

		company, err := companies.GetByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}

		return c.JSON(CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			Tier:      company.Tier,
			Address:   company.Address,
			CreatedAt: company.CreatedAt.Format(time.RFC3339),
		})
	}
}

// GET /api/companies/:id/members
func ListMembersHandler(companies *repository.CompanyReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid company id")
		}

		caller, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && (caller.CompanyID == nil || *caller.CompanyID != uint(id)) {
			return fiber.NewError(fiber.StatusForbidden, "you can only list members of your own company")
		}

		members, err := companies.Members(c.UserContext(), uint(id))
		if err != nil {
			return err
		}

		res := make([]MemberResponse, 0, len(members))
		for _, u := range members {
			res = append(res, MemberResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)})
		}
		return c.JSON(res)
	}
}
