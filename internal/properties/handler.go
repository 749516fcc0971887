package properties

import (
	"fmt"
	"strings"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type PropertyResponse struct {
	ID            uint     `json:"id"`
	CompanyID     *uint    `json:"company_id"`
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	Status        string   `json:"status"`
	Amenities     []string `json:"amenities"`
	PricePerNight float64  `json:"price_per_night"`
	Description   string   `json:"description"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type ReviewResponse struct {
	ID         uint   `json:"id"`
	PropertyID uint   `json:"property_id"`
	UserID     uint   `json:"user_id"`
	UserName   string `json:"user_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"created_at"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func toResponse(p models.Property) PropertyResponse {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return PropertyResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		Title:         p.Title,
		Address:       p.Address,
		Status:        string(p.Status),
		Amenities:     amenities,
		PricePerNight: p.PricePerNight,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

// -------------------------
// Properties
// -------------------------

// GET /api/properties?status=available
func ListPropertiesHandler(properties *repository.PropertyReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.PropertyStatus(strings.ToLower(c.Query("status")))
		switch status {
		case "", models.PropertyAvailable, models.PropertyUnavailable, models.PropertyArchived:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown property status")
		}

		list, err := properties.ListByStatus(c.UserContext(), status)
		if err != nil {
			return err
		}

		resp := make([]PropertyResponse, 0, len(list))
		for _, p := range list {
			resp = append(resp, toResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/properties/:id
func GetPropertyHandler(properties *repository.PropertyReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid property id")
		}

		p, err := properties.GetByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*p))
	}
}

// -------------------------
// Reviews
// -------------------------

// GET /api/properties/:id/reviews
func ListReviewsHandler(properties *repository.PropertyReader, reviews *repository.ReviewReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid property id")
		}

		if _, err := properties.GetByID(c.UserContext(), uint(id)); err != nil {
			return err
		}

		list, err := reviews.ListByProperty(c.UserContext(), uint(id))
		if err != nil {
			return err
		}

		resp := make([]ReviewResponse, 0, len(list))
		for _, r := range list {
			resp = append(resp, ReviewResponse{
				ID:         r.ID,
				PropertyID: r.PropertyID,
				UserID:     r.UserID,
				UserName:   r.User.Name,
				Rating:     r.Rating,
				Comment:    r.Comment,
				CreatedAt:  r.CreatedAt.Format(time.RFC3339),
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/properties/:id/reviews
func CreateReviewHandler(db *gorm.DB, properties *repository.PropertyReader, users *repository.UserReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid property id")
		}

		caller, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		var body CreateReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Rating < 1 || body.Rating > 5 {
			return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
		}

		property, err := properties.GetByID(c.UserContext(), uint(id))
		if err != nil {
			return err
		}
		author, err := users.GetByID(c.UserContext(), caller.UserID)
		if err != nil {
			return err
		}

		review := models.Review{
			UserID:     author.ID,
			PropertyID: property.ID,
			Rating:     body.Rating,
			Comment:    strings.TrimSpace(body.Comment),
		}
		if err := db.WithContext(c.UserContext()).Omit("User").Create(&review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		return c.Status(fiber.StatusCreated).JSON(ReviewResponse{
			ID:         review.ID,
			PropertyID: review.PropertyID,
			UserID:     review.UserID,
			UserName:   author.Name,
			Rating:     review.Rating,
			Comment:    review.Comment,
			CreatedAt:  review.CreatedAt.Format(time.RFC3339),
		})
	}
}
