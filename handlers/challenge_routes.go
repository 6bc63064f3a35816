// handlers/challenge_routes.go
package handlers

import (
	"sql-career-engine/logger"
	"sql-career-engine/middleware"
	"sql-career-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService, log *logger.Logger) {
	log = log.With("routes", "challenges")

	app.Get("/clusters", func(c *fiber.Ctx) error {
		clusters, err := challengeService.ListClusters(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(clusters)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		ch, err := challengeService.GetChallenge(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(ch)
	})

	admin := app.Group("/admin", middleware.UserContextMiddleware(log), middleware.RequireRole("admin"))

	admin.Post("/clusters", func(c *fiber.Ctx) error {
		var in services.ClusterInput
		if err := c.BodyParser(&in); err != nil {
			return badJSON(c, err)
		}
		cluster, err := challengeService.CreateCluster(c.UserContext(), in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cluster)
	})

	admin.Post("/challenges", func(c *fiber.Ctx) error {
		var in services.ChallengeInput
		if err := c.BodyParser(&in); err != nil {
			return badJSON(c, err)
		}
		ch, err := challengeService.CreateChallenge(c.UserContext(), in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})
}
