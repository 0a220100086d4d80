package middleware

import (
	"time"

	"vizhaa-backend/logger"
	"vizhaa-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestLog hands a sanitized copy of every API exchange to the async logger.
func RequestLog(l *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := renderError(c, c.Next()); err != nil {
			return err
		}

		entry := utils.CreateSanitizedLogEntry(c)
		entry.DurationMs = time.Since(start).Milliseconds()
		if user := CurrentUser(c); user != nil {
			entry.UserID = user.ID
		}
		l.Log(entry)
		return nil
	}
}
