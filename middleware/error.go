package middleware

import (
	"errors"
	"fmt"

	"vizhaa-backend/apperr"
	"vizhaa-backend/logger"
	"vizhaa-backend/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler renders every error returned by a handler as an ApiResponse.
// Causes of internal errors are only exposed when showDetails is set.
func ErrorHandler(showDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := types.ApiResponse{Success: false}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = apperr.NotFound("Resource not found")
		}

		var fe *fiber.Error
		if ae, ok := apperr.As(err); ok {
			resp.Status = ae.HTTPStatus()
			resp.Message = ae.Message
			if len(ae.Fields) > 0 {
				resp.Errors = ae.Fields
			}
			if showDetails && ae.Err != nil {
				resp.Data = fiber.Map{"error": ae.Err.Error()}
			}
		} else if errors.As(err, &fe) {
			resp.Status = fe.Code
			resp.Message = fe.Message
		} else {
			resp.Status = fiber.StatusInternalServerError
			resp.Message = "Internal server error"
			if showDetails {
				resp.Data = fiber.Map{"error": err.Error()}
			}
		}

		if resp.Status >= fiber.StatusInternalServerError {
			logger.Error(fmt.Sprintf("%s %s failed", c.Method(), c.OriginalURL()), err)
		}
		return c.Status(resp.Status).JSON(resp)
	}
}
