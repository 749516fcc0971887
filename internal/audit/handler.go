package audit

import (
	"errors"
	"strconv"

	"rental-backend/internal/auth"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	CompanyID   *uint              `json:"company_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *uint              `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

// GET /api/audit-logs?entity_type=booking&entity_id=1&user_id=2&company_id=3
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := Filter{
			EntityType: c.Query("entity_type"),
			UserID:     queryUint(c, "user_id"),
			EntityID:   queryUint(c, "entity_id"),
		}
		if cid := queryUint(c, "company_id"); cid != 0 {
			filter.CompanyID = &cid
		}

		logs, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			var undoneAt *string
			if l.UndoneAt != nil {
				formatted := l.UndoneAt.Format("2006-01-02 15:04:05")
				undoneAt = &formatted
			}
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				CompanyID:   l.CompanyID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				IsUndone:    l.IsUndone,
				UndoneBy:    l.UndoneBy,
				UndoneAt:    undoneAt,
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/audit-logs/:id/undo
func UndoAuditLogHandler(svc *Service, users *repository.UserReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid audit log id")
		}

		id, err := auth.CurrentIdentity(c)
		if err != nil {
			return err
		}
		user, err := users.GetByID(c.UserContext(), id.UserID)
		if err != nil {
			return err
		}

		if err := svc.UndoLog(c.UserContext(), uint(logID), user.ID, user.Name); err != nil {
			if errors.Is(err, ErrAlreadyUndone) || errors.Is(err, ErrNotUndoable) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return err
		}

		return c.JSON(fiber.Map{"message": "change undone"})
	}
}

func queryUint(c *fiber.Ctx, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
