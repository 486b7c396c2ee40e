package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// Runner es lo que el scheduler dispara en cada tick (el Scanner en producción).
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler dispara el escaneo una vez al arrancar y luego a intervalo fijo.
// La exclusión mutua entre pasadas la garantiza el propio Runner (el Scanner
// rechaza invocaciones concurrentes), así que un tick que llega con un escaneo
// en curso simplemente se salta.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *logger.Logger
}

// New construye el scheduler.
func New(runner Runner, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, log: log}
}

// Run bloquea hasta que el contexto se cancele.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler iniciado, ejecutando primer escaneo")
	s.trigger(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler detenido")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	if err := s.runner.Run(ctx); err != nil {
		if errors.Is(err, domain.ErrScanInProgress) {
			s.log.Warn().Msg("tick saltado: escaneo anterior todavía en curso")
			return
		}
		s.log.Error().Err(err).Msg("escaneo programado")
	}
}
