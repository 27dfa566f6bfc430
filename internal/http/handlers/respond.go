package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "ecomart/internal/log"
	"ecomart/internal/services"
	"ecomart/internal/validate"
)

// fail translates a service error into the wire contract. Business failures
// keep their message; anything unclassified is a store failure and surfaces
// generically.
func fail(c *fiber.Ctx, action string, err error) error {
	var be *services.Error
	if errors.As(err, &be) {
		body := fiber.Map{"message": be.Message}
		if be.Kind == services.KindInsufficientStock {
			body["available"] = be.Available
		}
		return c.Status(statusFor(be.Kind)).JSON(body)
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
}

func statusFor(k services.Kind) int {
	switch k {
	case services.KindProductNotFound, services.KindOrderNotFound:
		return fiber.StatusNotFound
	case services.KindAccessDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}

// invalid reports itemized field errors in one response.
func invalid(c *fiber.Ctx, errs []validate.FieldError) error {
	applog.Security(c, "validation.fail", map[string]any{"fields": fieldNames(errs)})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errs,
	})
}

func fieldNames(errs []validate.FieldError) []string {
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Field
	}
	return names
}
