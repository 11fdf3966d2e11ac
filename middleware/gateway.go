package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const (
	GatewayTokenHeader = "X-Gateway-Token"
	UserIDHeader       = "X-User-ID"
)

// gatewayUser returns the trusted X-User-ID when the request carries the
// shared gateway token. ok is false when no gateway token was presented.
// The id is copied out of the request buffer since it is stored past the request.
func gatewayUser(c *fiber.Ctx, expected string) (userID string, ok bool, err error) {
	token := strings.TrimSpace(c.Get(GatewayTokenHeader))
	if token == "" {
		return "", false, nil
	}
	if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		logrus.Warnf("[GATEWAY_AUTH] invalid gateway token for %s", c.Path())
		return "", true, fiber.NewError(fiber.StatusUnauthorized, "invalid gateway authentication token")
	}
	return utils.CopyString(strings.TrimSpace(c.Get(UserIDHeader))), true, nil
}
