package handlers

import (
	"strconv"

	"bodoge-manager/middleware"
	"bodoge-manager/services"

	"github.com/gofiber/fiber/v2"
)

func listQuery(c *fiber.Ctx) services.ListQuery {
	return services.ListQuery{
		Query:     c.Query("q"),
		Tags:      splitList(c.Query("tags")),
		Sort:      services.SortKey(c.Query("sort")),
		OwnedOnly: queryBool(c, "owned"),
	}
}

// gachaCondition overlays query parameters on the default condition.
func gachaCondition(c *fiber.Ctx) (services.GachaCondition, error) {
	cond := services.DefaultGachaCondition()
	if v := c.Query("players"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cond, err
		}
		cond.Players = &n
	}
	if v := c.Query("play_status"); v != "" {
		cond.PlayStatus = services.PlayStatus(v)
	}
	cond.Tags = splitList(c.Query("tags"))
	for key, dst := range map[string]*int{"min_time": &cond.MinTime, "max_time": &cond.MaxTime} {
		if v := c.Query(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cond, err
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*float64{"min_rating": &cond.MinRating, "max_rating": &cond.MaxRating} {
		if v := c.Query(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cond, err
			}
			*dst = f
		}
	}
	return cond, nil
}

func SetupGameRoutes(app fiber.Router, games *services.BoardGameService) {
	// 🔓 Reads: anonymous allowed
	app.Get("/games", func(c *fiber.Ctx) error {
		list, err := games.ListGames(c.UserContext(), middleware.UserID(c), listQuery(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/games/tags", func(c *fiber.Ctx) error {
		tags, err := games.ListTags(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tags)
	})

	app.Get("/games/gacha", func(c *fiber.Ctx) error {
		cond, err := gachaCondition(c)
		if err != nil {
			return badRequest(c, "invalid gacha condition")
		}
		picked, err := games.Gacha(c.UserContext(), middleware.UserID(c), cond)
		if err != nil {
			return respondError(c, err)
		}
		if picked == nil {
			return c.JSON(fiber.Map{"game": nil, "message": "no game matches these conditions"})
		}
		return c.JSON(fiber.Map{"game": picked})
	})

	app.Get("/games/:id", func(c *fiber.Ctx) error {
		game, err := games.GetGame(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(game)
	})

	app.Get("/games/:id/evaluations", func(c *fiber.Ctx) error {
		list, err := games.ListEvaluations(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/profiles/:id/games", func(c *fiber.Ctx) error {
		list, err := games.ListProfileGames(c.UserContext(), middleware.UserID(c), c.Params("id"), listQuery(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	// 🔐 Writes: services reject anonymous callers
	app.Post("/games", func(c *fiber.Ctx) error {
		var in services.GameInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		game, err := games.AddGame(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(game)
	})

	app.Put("/games/:id", func(c *fiber.Ctx) error {
		var in services.GameInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body")
		}
		game, err := games.UpdateGame(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(game)
	})

	app.Delete("/games/:id", func(c *fiber.Ctx) error {
		if err := games.DeleteGame(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Put("/games/:id/ownership", func(c *fiber.Ctx) error {
		var body struct {
			Owned bool `json:"owned"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		if err := games.SetOwnership(c.UserContext(), middleware.UserID(c), c.Params("id"), body.Owned); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"owned": body.Owned})
	})

	app.Put("/games/:id/evaluation", func(c *fiber.Ctx) error {
		var body struct {
			Evaluation int     `json:"evaluation"`
			Comment    *string `json:"comment"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
		state, err := games.RateAndImplyPlayed(c.UserContext(), middleware.UserID(c), c.Params("id"), body.Evaluation, body.Comment)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(state)
	})

	app.Patch("/games/:id/state", func(c *fiber.Ctx) error {
		var patch services.PlayStatePatch
		if err := c.BodyParser(&patch); err != nil {
			return badRequest(c, "invalid request body")
		}
		state, err := games.EditPlayState(c.UserContext(), middleware.UserID(c), c.Params("id"), patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(state)
	})
}
