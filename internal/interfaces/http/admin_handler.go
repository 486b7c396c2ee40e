package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// AdminHandler maneja las peticiones del API administrativo del bot.
type AdminHandler struct {
	scanner     *scan.Scanner
	products    repository.ProductRepository
	subscribers repository.SubscriberRepository
	log         *logger.Logger
}

// NewAdminHandler construye el handler.
func NewAdminHandler(
	scanner *scan.Scanner,
	products repository.ProductRepository,
	subscribers repository.SubscriberRepository,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		scanner:     scanner,
		products:    products,
		subscribers: subscribers,
		log:         log,
	}
}

// TriggerScan dispara un escaneo manual en segundo plano. Responde 202 si se
// lanzó y 409 si ya hay uno en curso (el guard vive en el Scanner: el ticker
// y este endpoint comparten el mismo punto de serialización).
func (h *AdminHandler) TriggerScan(c *fiber.Ctx) error {
	if h.scanner.Running() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "escaneo en curso",
		})
	}
	go func() {
		if err := h.scanner.Run(context.Background()); err != nil {
			h.log.Warn().Err(err).Msg("escaneo manual no ejecutado")
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "escaneo lanzado"})
}

// Stats devuelve contadores básicos del sistema.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	products, err := h.products.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	subscribers, err := h.subscribers.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	stats := fiber.Map{
		"products":     products,
		"subscribers":  subscribers,
		"scan_running": h.scanner.Running(),
	}
	if last := h.scanner.LastScanAt(); !last.IsZero() {
		stats["last_scan_at"] = last
	}
	return c.JSON(stats)
}
