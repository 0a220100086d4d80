package server

import (
	"context"
	"time"

	"vizhaa-backend/logger"
	"vizhaa-backend/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthController reports process and database liveness.
type HealthController struct {
	db      *gorm.DB
	env     string
	started time.Time
}

func NewHealthController(db *gorm.DB, env string) *HealthController {
	return &HealthController{db: db, env: env, started: time.Now()}
}

func (h *HealthController) Health(c *fiber.Ctx) error {
	database := "up"
	status := fiber.StatusOK

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		logger.Warning("Health check: database unreachable")
		database = "down"
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(types.ApiResponse{
		Success: status == fiber.StatusOK,
		Status:  status,
		Message: "Vizhaa backend is running",
		Data: fiber.Map{
			"environment": h.env,
			"database":    database,
			"uptime":      time.Since(h.started).Round(time.Second).String(),
			"timestamp":   time.Now().Format(time.RFC3339),
		},
	})
}
