package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"harvestlink/internal/errs"
)

// fail maps service errors onto the wire taxonomy. Forbidden and not-found
// share one opaque response so a denied caller learns nothing about whether
// the resource exists.
func fail(c *fiber.Ctx, err error) error {
	var ite *errs.InvalidTransitionError
	switch {
	case errors.Is(err, errs.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed"})
	case errors.Is(err, errs.ErrInvalidCredential):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credential"})
	case errors.Is(err, errs.ErrInactiveAccount):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account inactive"})
	case errors.Is(err, errs.ErrForbidden), errors.Is(err, errs.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	case errors.As(err, &ite):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     "invalid transition",
			"current":   ite.Current,
			"requested": ite.Requested,
		})
	case errors.Is(err, errs.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict, retry with fresh state"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
