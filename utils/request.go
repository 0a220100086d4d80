package utils

import (
	"vizhaa-backend/apperr"
	"vizhaa-backend/logger"

	"github.com/gofiber/fiber/v2"
)

// ParseBody decodes the request body into out and validates its tags.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		logger.Debug("Failed to parse request body: " + err.Error())
		return apperr.Validation("Invalid request body")
	}
	return Validate(out)
}
