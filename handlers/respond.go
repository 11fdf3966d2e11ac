package handlers

import (
	"errors"
	"strconv"
	"strings"

	"bodoge-manager/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error to its status and the JSON error body.
func respondError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		return c.Status(se.HTTP).JSON(fiber.Map{"error": se.Message, "code": se.Code})
	}
	logrus.WithError(err).Errorf("[HTTP] unhandled error on %s %s", c.Method(), c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error", "code": "Internal"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "ValidationFailure"})
}

// splitList parses "a,b,c" query values.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func queryBool(c *fiber.Ctx, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
