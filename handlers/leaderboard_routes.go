// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"
	"strings"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/middleware"
	"sql-career-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, board *services.LeaderboardService, log *logger.Logger) {
	log = log.With("routes", "leaderboard")

	// Public behind the gateway. X-User-ID, when present, only locates the caller.
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_argument",
				"cause": "page must be an integer",
			})
		}
		period, err := engine.ParsePeriod(c.Query("period"))
		if err != nil {
			return respondError(c, log, err)
		}
		lb, err := board.GetLeaderboard(c.UserContext(), services.LeaderboardQuery{
			Region:   c.Query("region"),
			Search:   c.Query("search"),
			Page:     page,
			CallerID: strings.TrimSpace(c.Get("X-User-ID")),
			Period:   period,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(lb)
	})

	// the caller's rank on every period board
	app.Get("/leaderboard/me", middleware.UserContextMiddleware(log), func(c *fiber.Ctx) error {
		ranking, err := board.GetPlayerRanking(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(ranking)
	})

	admin := app.Group("/admin/leaderboard", middleware.UserContextMiddleware(log), middleware.RequireRole("admin"))

	admin.Post("/rebuild", func(c *fiber.Ctx) error {
		n, err := board.Rebuild(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{
			"message": "leaderboard rebuilt",
			"rows":    n,
		})
	})
}
