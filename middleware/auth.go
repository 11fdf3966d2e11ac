package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const userIDLocal = "user_id"

type IdentityConfig struct {
	// GatewayToken enables trusted X-User-ID headers; empty disables them.
	GatewayToken string
	Resolver     TokenResolver
}

// Identity attaches the caller's user id to the context. Requests with no
// credentials continue anonymously; bad credentials are rejected.
func Identity(cfg IdentityConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, viaGateway, err := gatewayUser(c, cfg.GatewayToken)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		if !viaGateway {
			if c.Get(UserIDHeader) != "" {
				logrus.Debugf("[USER_CTX] ignoring X-User-ID without gateway token on %s", c.Path())
			}
			if userID, err = bearerUser(c, cfg.Resolver); err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
		}
		c.Locals(userIDLocal, userID)
		return c.Next()
	}
}

// UserID returns the authenticated caller, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "please sign in",
				"code":  "NotAuthenticated",
			})
		}
		return c.Next()
	}
}
