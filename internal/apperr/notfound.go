// Package apperr holds the failure kinds shared by the lookup layer and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Entity tags the aggregate a lookup was made for.
type Entity string

const (
	EntityUser     Entity = "User"
	EntityCompany  Entity = "Company"
	EntityProperty Entity = "Property"
	EntityBooking  Entity = "Booking"
	EntityFavorite Entity = "Favorite"
	EntityReview   Entity = "Review"
	EntityAuditLog Entity = "AuditLog"
)

// ErrNotFound is matched by every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup miss for one entity. Variants differ only by their tag.
type NotFoundError struct {
	Entity  Entity
	Message string
}

// NewNotFound builds a NotFoundError. When msg is empty the message is "<tag> not found".
func NewNotFound(entity Entity, msg ...string) *NotFoundError {
	e := &NotFoundError{Entity: entity}
	if len(msg) > 0 && msg[0] != "" {
		e.Message = msg[0]
	} else {
		e.Message = fmt.Sprintf("%s not found", entity)
	}
	return e
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err is a lookup miss for any entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFoundEntity returns the entity tag carried by err, if any.
func NotFoundEntity(err error) (Entity, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Entity, true
	}
	return "", false
}
