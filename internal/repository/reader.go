// Package repository is the entity lookup layer: every aggregate is read through a Reader
// that either returns the record or a declared failure.
package repository

import (
	"context"
	"errors"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownField is returned by FindBy when the field does not belong to the model.
var ErrUnknownField = errors.New("unknown field")

var primaryKeyOrder = clause.OrderByColumn{
	Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey},
}

// Reader reads one aggregate type. It never caches.
type Reader[T any] struct {
	db     *gorm.DB
	entity apperr.Entity
}

func NewReader[T any](db *gorm.DB, entity apperr.Entity) *Reader[T] {
	return &Reader[T]{db: db, entity: entity}
}

func (r *Reader[T]) Entity() apperr.Entity {
	return r.entity
}

// GetByID returns the record with the given primary key or an *apperr.NotFoundError.
// It is the only lookup that fails on a miss.
func (r *Reader[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", r.entity, id, err)
	}
	return &out, nil
}

// FindBy returns the first record (by primary key) whose field equals value. A miss is
// reported as (nil, false, nil), never as an error.
func (r *Reader[T]) FindBy(ctx context.Context, field string, value any) (*T, bool, error) {
	column, err := r.column(field)
	if err != nil {
		return nil, false, err
	}

	var out T
	res := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: value}).
		Order(primaryKeyOrder).
		Limit(1).
		Find(&out)
	if res.Error != nil {
		return nil, false, fmt.Errorf("find %s by %s: %w", r.entity, field, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &out, true, nil
}

// GetAll returns every record ordered by primary key. No filtering, no pagination.
func (r *Reader[T]) GetAll(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := r.db.WithContext(ctx).Order(primaryKeyOrder).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entity, err)
	}
	return out, nil
}

func (r *Reader[T]) notFound() error {
	metrics.LookupMisses.WithLabelValues(string(r.entity)).Inc()
	return apperr.NewNotFound(r.entity)
}

// column resolves a Go field name or a column name against the model schema.
func (r *Reader[T]) column(field string) (string, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(new(T)); err != nil {
		return "", fmt.Errorf("parse %s schema: %w", r.entity, err)
	}
	f := stmt.Schema.LookUpField(field)
	if f == nil || f.DBName == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity, field)
	}
	return f.DBName, nil
}
