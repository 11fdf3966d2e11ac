package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

// TokenResolver maps an access token to a user id.
type TokenResolver interface {
	ResolveUser(ctx context.Context, accessToken string) (string, error)
}

// bearerToken returns a copy of the token; resolvers may keep it as a cache key.
func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return utils.CopyString(strings.TrimSpace(h[7:]))
}

// bearerUser resolves the Authorization header. An absent header is anonymous.
func bearerUser(c *fiber.Ctx, resolver TokenResolver) (string, error) {
	token := bearerToken(c)
	if token == "" || resolver == nil {
		return "", nil
	}
	userID, err := resolver.ResolveUser(c.UserContext(), token)
	if err != nil {
		logrus.WithError(err).Warnf("[AUTH] token rejected (len=%d) for %s", len(token), c.Path())
		return "", fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
	}
	return userID, nil
}
