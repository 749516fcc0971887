package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// HTTPStatus maps an error returned by a handler to the status the client will see.
func HTTPStatus(err error) int {
	if err == nil {
		return fiber.StatusOK
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if IsNotFound(err) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
