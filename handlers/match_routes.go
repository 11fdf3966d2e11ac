package handlers

import (
	"bodoge-manager/middleware"
	"bodoge-manager/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app fiber.Router, matches *services.MatchService) {
	app.Get("/matches", func(c *fiber.Ctx) error {
		list, err := matches.ListMatches(c.UserContext(), middleware.UserID(c), c.Query("user_id"), c.Query("game_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/matches/images", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		url, err := matches.UploadMatchImage(c.UserContext(), middleware.UserID(c), fh)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
	})

	app.Post("/matches", func(c *fiber.Ctx) error {
		var in services.MatchInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		m, err := matches.AddMatch(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	app.Put("/matches/:id", func(c *fiber.Ctx) error {
		var in services.MatchInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		m, err := matches.UpdateMatch(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	})

	app.Delete("/matches/:id", func(c *fiber.Ctx) error {
		if err := matches.DeleteMatch(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
