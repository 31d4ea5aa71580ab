package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports database and storage availability
type HealthHandler struct {
	Config  *config.Config
	DB      *gorm.DB
	Storage storage.Storage
	Log     *zap.Logger
}

// Health handles GET /api/health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Storage, h.Log)
	if result.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.JSON(result)
}
