// handlers/progression_routes.go
package handlers

import (
	"strconv"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/middleware"
	"sql-career-engine/services"

	"github.com/gofiber/fiber/v2"
)

type attemptRequest struct {
	ChallengeID string                  `json:"challenge_id"`
	Query       string                  `json:"query"`
	Metrics     engine.ExecutionMetrics `json:"metrics"`
	HintsUsed   int                     `json:"hints_used"`
	Correct     bool                    `json:"correct"`
}

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, badgeService *services.BadgeService, log *logger.Logger) {
	log = log.With("routes", "progression")
	userCtx := middleware.UserContextMiddleware(log)

	// the player is always the authenticated caller, never a body field
	app.Post("/attempts", userCtx, func(c *fiber.Ctx) error {
		var req attemptRequest
		if err := c.BodyParser(&req); err != nil {
			return badJSON(c, err)
		}
		userID := middleware.UserID(c)
		if _, err := progressionService.EnsurePlayer(c.UserContext(), userID, middleware.Username(c), middleware.Region(c)); err != nil {
			return respondError(c, log, err)
		}

		result, err := progressionService.SubmitAttempt(c.UserContext(), engine.Submission{
			ChallengeID: req.ChallengeID,
			PlayerID:    userID,
			Query:       req.Query,
			Metrics:     req.Metrics,
			HintsUsed:   req.HintsUsed,
			Correct:     req.Correct,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(result)
	})

	user := app.Group("/user", userCtx)

	user.Get("/progress", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if _, err := progressionService.EnsurePlayer(c.UserContext(), userID, middleware.Username(c), middleware.Region(c)); err != nil {
			return respondError(c, log, err)
		}
		prog, err := progressionService.GetProgress(c.UserContext(), userID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(prog)
	})

	user.Get("/progress/history", func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_argument",
				"cause": "page must be an integer",
			})
		}
		size, err := strconv.Atoi(c.Query("size", "20"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_argument",
				"cause": "size must be an integer",
			})
		}
		history, err := progressionService.GetHistory(c.UserContext(), middleware.UserID(c), page, size)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(history)
	})

	user.Get("/progress/badges", func(c *fiber.Ctx) error {
		badges, err := badgeService.ListForPlayer(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}

		response := make([]fiber.Map, 0, len(badges))
		for _, ub := range badges {
			response = append(response, fiber.Map{
				"id":           ub.ID,
				"code":         ub.BadgeCode,
				"name":         ub.BadgeType.Name,
				"description":  ub.BadgeType.Description,
				"icon_url":     ub.BadgeType.IconURL,
				"rarity":       ub.BadgeType.Rarity,
				"challenge_id": ub.ChallengeID,
				"awarded_at":   ub.AwardedAt,
			})
		}
		return c.JSON(response)
	})
}
