package handlers

import (
	"bodoge-manager/middleware"
	"bodoge-manager/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app fiber.Router, profiles *services.ProfileService, friends *services.FriendService) {
	app.Get("/profiles", func(c *fiber.Ctx) error {
		list, err := profiles.ListProfiles(c.UserContext(), middleware.UserID(c), c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/profiles/discriminator", func(c *fiber.Ctx) error {
		d, err := profiles.GenerateDiscriminator(c.UserContext(), c.Query("name"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"discriminator": d})
	})

	app.Get("/profiles/:id", func(c *fiber.Ctx) error {
		p, err := profiles.GetProfile(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	app.Get("/profiles/:id/friends", func(c *fiber.Ctx) error {
		list, err := friends.ListFriendsOf(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	// 🔐 Caller's own profile and friend requests
	auth := middleware.RequireUser()

	app.Get("/me", auth, func(c *fiber.Ctx) error {
		p, err := profiles.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	app.Put("/me/profile", auth, func(c *fiber.Ctx) error {
		var in services.ProfileInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		p, err := profiles.UpsertMyProfile(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	app.Post("/me/avatar", auth, func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		url, err := profiles.UploadAvatar(c.UserContext(), middleware.UserID(c), fh)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})

	app.Get("/friends", auth, func(c *fiber.Ctx) error {
		list, err := friends.ListFriendships(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/friends/requests", auth, func(c *fiber.Ctx) error {
		var body struct {
			Tag string `json:"tag"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		f, err := friends.SendFriendRequest(c.UserContext(), middleware.UserID(c), body.Tag)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	})

	app.Put("/friends/requests/:id", auth, func(c *fiber.Ctx) error {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		f, err := friends.RespondToFriendRequest(c.UserContext(), middleware.UserID(c), c.Params("id"), body.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(f)
	})
}
