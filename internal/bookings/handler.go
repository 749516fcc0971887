package bookings

import (
	"fmt"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/metrics"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookingResponse struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	PropertyID    uint    `json:"property_id"`
	PropertyTitle string  `json:"property_title,omitempty"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Guests        int     `json:"guests"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	CancelledAt   *string `json:"cancelled_at"`
	CreatedAt     string  `json:"created_at"`
}

func toResponse(b models.Booking) BookingResponse {
	var cancelledAt *string
	if b.CancelledAt != nil {
		formatted := b.CancelledAt.Format(time.RFC3339)
		cancelledAt = &formatted
	}
	return BookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		PropertyID:    b.PropertyID,
		PropertyTitle: b.Property.Title,
		CheckIn:       b.CheckIn.Format(time.RFC3339),
		CheckOut:      b.CheckOut.Format(time.RFC3339),
		Guests:        b.Guests,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		CancelledAt:   cancelledAt,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/bookings
func ListBookingsHandler(bookings *repository.BookingReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}

		list, err := bookings.ListByUser(c.UserContext(), caller.UserID)
		if err != nil {
			return err
		}

		resp := make([]BookingResponse, 0, len(list))
		for _, b := range list {
			resp = append(resp, toResponse(b))
		}
		return c.JSON(resp)
	}
}

// GET /api/bookings/:id
func GetBookingHandler(bookings *repository.BookingReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		booking, _, err := loadOwnedBooking(c, bookings)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*booking))
	}
}

// POST /api/bookings/:id/cancel
func CancelBookingHandler(db *gorm.DB, bookings *repository.BookingReader, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		booking, caller, err := loadOwnedBooking(c, bookings)
		if err != nil {
			return err
		}

		if booking.Status == models.BookingCancelled {
			return fiber.NewError(fiber.StatusConflict, "booking is already cancelled")
		}

		before := audit.BookingSnapshot(*booking)
		now := time.Now().UTC()

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Booking{}).
				Where("id = ? AND status <> ?", booking.ID, models.BookingCancelled).
				Updates(map[string]interface{}{
					"status":       models.BookingCancelled,
					"cancelled_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("cancel booking %d: %w", booking.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, "booking is already cancelled")
			}

			booking.Status = models.BookingCancelled
			booking.CancelledAt = &now

			return auditSvc.WriteLog(c.UserContext(), tx, audit.LogOptions{
				CompanyID:   caller.CompanyID,
				UserID:      caller.UserID,
				EntityType:  audit.EntityBooking,
				EntityID:    booking.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Booking cancelled: #%d", booking.ID),
				Before:      before,
				After:       audit.BookingSnapshot(*booking),
			})
		})
		if err != nil {
			return err
		}

		metrics.BookingsCancelled.Inc()
		middleware.Logger(c).Info("booking cancelled", zap.Uint("booking_id", booking.ID))

		return c.JSON(toResponse(*booking))
	}
}

// loadOwnedBooking fetches the :id booking and checks the caller owns it or is an admin.
func loadOwnedBooking(c *fiber.Ctx, bookings *repository.BookingReader) (*models.Booking, auth.Identity, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, auth.Identity{}, fiber.NewError(fiber.StatusBadRequest, "invalid booking id")
	}

	caller, err := auth.CurrentIdentity(c)
	if err != nil {
		return nil, auth.Identity{}, err
	}

	booking, err := bookings.GetByID(c.UserContext(), uint(id))
	if err != nil {
		return nil, caller, err
	}
	if !caller.CanAccessUser(booking.UserID) {
		return nil, caller, fiber.NewError(fiber.StatusForbidden, "you do not have access to this booking")
	}
	return booking, caller, nil
}
