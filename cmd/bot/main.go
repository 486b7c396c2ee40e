package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/notify"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/subscription"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/infrastructure/greenleaf"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/infrastructure/postgres"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/infrastructure/telegram"
	httpRouter "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/interfaces/http"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/scheduler"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/config"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("warehouses", len(cfg.Warehouses)).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de base de datos")
	}

	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)

	subscriptionUC := subscription.NewUseCase(subscriberRepo)
	bot, err := telegram.NewBot(cfg.Telegram.Token, subscriptionUC, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bot de Telegram")
	}

	dispatcher := notify.NewDispatcher(bot, subscriberRepo, cfg.Notify.MinSendInterval, notify.SystemClock{}, log)
	client := greenleaf.NewClient(cfg.GreenLeaf, log)
	detector := scan.NewDetector(productRepo, stockRepo, cfg.Warehouses, log)
	scanner := scan.NewScanner(client, detector, dispatcher, cfg.Warehouses, cfg.Scan, log)

	go bot.Run(ctx)
	go scheduler.New(scanner, cfg.Scan.Interval, log).Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		Scanner:     scanner,
		Products:    productRepo,
		Subscribers: subscriberRepo,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
