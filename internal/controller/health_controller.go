package controller

import (
	"orquix-backend/internal/pkg/serverutils"
	"orquix-backend/pkg/llm/registry"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Providers(ctx *fiber.Ctx) error
}

type healthController struct {
	db       *gorm.DB
	registry *registry.Registry
}

func NewHealthController(db *gorm.DB, reg *registry.Registry) IHealthController {
	return &healthController{
		db:       db,
		registry: reg,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health/v1")
	h.Get("", c.Health)
	h.Get("providers", c.Providers)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Context())
	}
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("degraded", fiber.Map{
			"database": err.Error(),
		}))
	}
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
		"database": "ok",
	}))
}

// Providers probes every registered adapter and reports per-provider status.
func (c *healthController) Providers(ctx *fiber.Ctx) error {
	statuses := c.registry.Health(ctx.Context())

	report := make(map[string]string, len(statuses))
	healthy := true
	for name, err := range statuses {
		if err != nil {
			report[name] = err.Error()
			healthy = false
		} else {
			report[name] = "ok"
		}
	}

	if !healthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("degraded", report))
	}
	return ctx.JSON(serverutils.SuccessResponse("ok", report))
}
