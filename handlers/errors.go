package handlers

import (
	"errors"

	"sql-career-engine/engine"
	"sql-career-engine/logger"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto the {"error", "cause"} body.
// Inconsistent snapshots are logged as corruption, apart from bad requests.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var fe *fiber.Error
	switch {
	case engine.IsInvalidArgument(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_argument", "cause": err.Error()})
	case engine.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "cause": err.Error()})
	case engine.IsInconsistentSnapshot(err):
		log.Error("inconsistent snapshot", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "inconsistent_snapshot", "cause": err.Error()})
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": "request_error", "cause": fe.Message})
	default:
		log.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "cause": err.Error()})
	}
}

func badJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid JSON",
		"cause": err.Error(),
	})
}
