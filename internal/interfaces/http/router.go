package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	Scanner     *scan.Scanner
	Products    repository.ProductRepository
	Subscribers repository.SubscriberRepository
	Log         *logger.Logger
}

// Router registra las rutas del API administrativo.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")
	admin := NewAdminHandler(deps.Scanner, deps.Products, deps.Subscribers, deps.Log)
	api.Post("/scan", admin.TriggerScan)
	api.Get("/stats", admin.Stats)
}
