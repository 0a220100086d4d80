package utils

import (
	"vizhaa-backend/constants"

	"github.com/gofiber/fiber/v2"
)

// Pagination reads page and limit query values with sane bounds.
func Pagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", constants.DefaultPageSize)
	if page < 1 {
		page = 1
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	if limit < 1 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	return page, limit
}

// Offset converts page and limit into a row offset.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}
