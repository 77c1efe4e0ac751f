package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"gerai/internal/database"
)

// DatabaseReady gates data-accessing routes on store connectivity. The
// connector caches success only, so a failed attempt here is retried on the
// next request rather than wedging the process.
func DatabaseReady(connector *database.Connector, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := connector.Connect(c.Context()); err != nil {
			logger.Error().Err(err).Msg("database not ready")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
		return c.Next()
	}
}
