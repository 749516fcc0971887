package favorites

import (
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FavoriteResponse struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	PropertyID    uint    `json:"property_id"`
	PropertyTitle string  `json:"property_title"`
	PricePerNight float64 `json:"price_per_night"`
	CreatedAt     string  `json:"created_at"`
}

type ToggleFavoriteRequest struct {
	PropertyID uint `json:"property_id"`
}

type ToggleFavoriteResponse struct {
	Favorited  bool `json:"favorited"`
	FavoriteID uint `json:"favorite_id,omitempty"`
	PropertyID uint `json:"property_id"`
}

// GET /api/users/:id/favorites
func ListFavoritesHandler(users *repository.UserReader, favorites *repository.FavoriteReader) fiber.Handler {
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
			return fiber.NewError(fiber.StatusForbidden, "you can only view your own favorites")
		}

		if _, err := users.GetByID(c.UserContext(), uint(id)); err != nil {
			return err
		}

		list, err := favorites.ListByUser(c.UserContext(), uint(id))
		if err != nil {
			return err
		}

		resp := make([]FavoriteResponse, 0, len(list))
		for _, f := range list {
			resp = append(resp, FavoriteResponse{
				ID:            f.ID,
				UserID:        f.UserID,
				PropertyID:    f.PropertyID,
				PropertyTitle: f.Property.Title,
				PricePerNight: f.Property.PricePerNight,
				CreatedAt:     f.CreatedAt.Format(time.RFC3339),
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/favorites/toggle
// Adds the property to the caller's favorites, or removes it when already present.
func ToggleFavoriteHandler(db *gorm.DB, favorites *repository.FavoriteReader, properties *repository.PropertyReader, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		var body ToggleFavoriteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.PropertyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id is required")
		}

		ctx := c.UserContext()
		if _, err := properties.GetByID(ctx, body.PropertyID); err != nil {
			return err
		}

		resp := ToggleFavoriteResponse{PropertyID: body.PropertyID}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, found, err := favorites.In(tx).FindPair(ctx, caller.UserID, body.PropertyID)
			if err != nil {
				return err
			}
			if found {
				if err := tx.Delete(&models.Favorite{}, existing.ID).Error; err != nil {
					return fmt.Errorf("remove favorite %d: %w", existing.ID, err)
				}
				return auditSvc.WriteLog(ctx, tx, audit.LogOptions{
					CompanyID:   caller.CompanyID,
					UserID:      caller.UserID,
					EntityType:  audit.EntityFavorite,
					EntityID:    existing.ID,
					Action:      models.AuditActionDelete,
					Description: fmt.Sprintf("Favorite removed: property #%d", body.PropertyID),
					Before:      audit.FavoriteSnapshot(*existing),
				})
			}

			fav := models.Favorite{UserID: caller.UserID, PropertyID: body.PropertyID}
			if err := addFavorite(tx, &fav); err != nil {
				return err
			}
			resp.Favorited = true
			resp.FavoriteID = fav.ID

			return auditSvc.WriteLog(ctx, tx, audit.LogOptions{
				CompanyID:   caller.CompanyID,
				UserID:      caller.UserID,
				EntityType:  audit.EntityFavorite,
				EntityID:    fav.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Favorite added: property #%d", body.PropertyID),
				After:       audit.FavoriteSnapshot(fav),
			})
		})
		if err != nil {
			return err
		}

		return c.JSON(resp)
	}
}

// addFavorite inserts fav, a concurrent toggle that already added the pair yields 409.
func addFavorite(tx *gorm.DB, fav *models.Favorite) error {
	err := tx.Omit("Property").Create(fav).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.NewError(fiber.StatusConflict, "property is already in favorites")
	}
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}
