package handlers

import "github.com/gofiber/fiber/v2"

// AppConfig is the fiber config the routes run under. Params, queries and
// headers end up in stored rows, so they must not alias fasthttp's buffers.
func AppConfig(bodyLimitMB int) fiber.Config {
	return fiber.Config{
		BodyLimit: bodyLimitMB * 1024 * 1024,
		Immutable: true,
	}
}
