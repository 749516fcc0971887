package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"gorm.io/gorm"
)

// Entity types written to AuditLog.EntityType.
const (
	EntityUser     = "user"
	EntityBooking  = "booking"
	EntityFavorite = "favorite"
)

var (
	ErrAlreadyUndone = errors.New("this change has already been undone")
	ErrNotUndoable   = errors.New("this change cannot be undone")
)

type LogOptions struct {
	CompanyID   *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Snapshots stored in BeforeData/AfterData.

type UserState struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	Tier  string          `json:"tier"`

	// set on the after-snapshot of an update that replaced the password hash; hashes are
	// never written to the log, so such an update cannot be undone
	PasswordChanged bool `json:"password_changed,omitempty"`
}

func UserSnapshot(u models.User) UserState {
	return UserState{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Tier: u.Tier}
}

type BookingState struct {
	ID          uint                 `json:"id"`
	Status      models.BookingStatus `json:"status"`
	CancelledAt *time.Time           `json:"cancelled_at"`
}

func BookingSnapshot(b models.Booking) BookingState {
	return BookingState{ID: b.ID, Status: b.Status, CancelledAt: b.CancelledAt}
}

type FavoriteState struct {
	ID         uint `json:"id"`
	UserID     uint `json:"user_id"`
	PropertyID uint `json:"property_id"`
}

func FavoriteSnapshot(f models.Favorite) FavoriteState {
	return FavoriteState{ID: f.ID, UserID: f.UserID, PropertyID: f.PropertyID}
}

type Service struct {
	db   *gorm.DB
	logs *repository.Reader[models.AuditLog]
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, logs: repository.NewReader[models.AuditLog](db, apperr.EntityAuditLog)}
}

// WriteLog stores one audit entry. Pass a transaction as tx to make the entry part of it,
// or nil to use the service connection.
func (s *Service) WriteLog(ctx context.Context, tx *gorm.DB, opts LogOptions) error {
	if tx == nil {
		tx = s.db
	}
	if opts.UserName == "" {
		opts.UserName = s.actorName(ctx, tx, opts.UserID)
	}

	entry := models.AuditLog{
		CompanyID:   opts.CompanyID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalOrNull(opts.Before),
		AfterData:   marshalOrNull(opts.After),
	}

	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// UndoLog reverts the change recorded by logID and records the undo itself.
func (s *Service) UndoLog(ctx context.Context, logID, userID uint, userName string) error {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return err
	}
	if entry.IsUndone || entry.Action == models.AuditActionUndo {
		return ErrAlreadyUndone
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// claim the entry first; a concurrent undo that got here earlier leaves nothing to claim
		now := time.Now()
		res := tx.Model(&models.AuditLog{}).
			Where("id = ? AND is_undone = ?", entry.ID, false).
			Updates(map[string]interface{}{
				"is_undone": true,
				"undone_by": userID,
				"undone_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("mark audit log undone: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUndone
		}

		if err := revert(tx, entry); err != nil {
			return err
		}

		undo := models.AuditLog{
			CompanyID:   entry.CompanyID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Undone: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undo).Error; err != nil {
			return fmt.Errorf("write undo audit log: %w", err)
		}
		return nil
	})
}

func revert(tx *gorm.DB, entry *models.AuditLog) error {
	switch {
	case entry.EntityType == EntityFavorite && entry.Action == models.AuditActionCreate:
		return tx.Delete(&models.Favorite{}, "id = ?", entry.EntityID).Error

	case entry.EntityType == EntityFavorite && entry.Action == models.AuditActionDelete:
		var st FavoriteState
		if err := json.Unmarshal([]byte(entry.BeforeData), &st); err != nil {
			return fmt.Errorf("decode favorite snapshot: %w", err)
		}
		return tx.Create(&models.Favorite{UserID: st.UserID, PropertyID: st.PropertyID}).Error

	case entry.EntityType == EntityBooking && entry.Action == models.AuditActionUpdate:
		var st BookingState
		if err := json.Unmarshal([]byte(entry.BeforeData), &st); err != nil {
			return fmt.Errorf("decode booking snapshot: %w", err)
		}
		return tx.Model(&models.Booking{}).Where("id = ?", entry.EntityID).Updates(map[string]interface{}{
			"status":       st.Status,
			"cancelled_at": st.CancelledAt,
		}).Error

	case entry.EntityType == EntityUser && entry.Action == models.AuditActionUpdate:
		var after UserState
		if err := json.Unmarshal([]byte(entry.AfterData), &after); err != nil {
			return fmt.Errorf("decode user snapshot: %w", err)
		}
		if after.PasswordChanged {
			return ErrNotUndoable
		}
		var st UserState
		if err := json.Unmarshal([]byte(entry.BeforeData), &st); err != nil {
			return fmt.Errorf("decode user snapshot: %w", err)
		}
		return tx.Model(&models.User{}).Where("id = ?", entry.EntityID).Updates(map[string]interface{}{
			"name":  st.Name,
			"email": st.Email,
			"role":  st.Role,
			"tier":  st.Tier,
		}).Error
	}
	return ErrNotUndoable
}

func (s *Service) actorName(ctx context.Context, tx *gorm.DB, userID uint) string {
	var u models.User
	if err := tx.WithContext(ctx).Select("name").First(&u, userID).Error; err != nil {
		return ""
	}
	return u.Name
}

// jsonb-style columns store "null" rather than an empty string
func marshalOrNull(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type Filter struct {
	CompanyID  *uint
	UserID     uint
	EntityType string
	EntityID   uint
}

// List returns audit entries newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}

	logs := make([]models.AuditLog, 0)
	if err := q.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
