package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/scan"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

// MessageSender define el puerto de salida hacia el proveedor de mensajería.
// Debe devolver domain.ErrRecipientGone cuando el destinatario bloqueó al bot
// o es permanentemente inalcanzable; cualquier otro error se trata como
// transitorio.
type MessageSender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Dispatcher despacha eventos de reabastecimiento a todos los suscriptores
// vigentes, en orden, con un intervalo mínimo global entre envíos (techo de
// salida del proveedor, no un límite por suscriptor). El timestamp del último
// envío es estado propio del despachador; los envíos son estrictamente
// secuenciales, así que no requiere lock.
type Dispatcher struct {
	sender      MessageSender
	subscribers repository.SubscriberRepository
	clock       Clock
	minInterval time.Duration
	lastSent    time.Time
	log         *logger.Logger
}

// NewDispatcher construye el despachador. clock normalmente es SystemClock{};
// los tests inyectan uno controlable.
func NewDispatcher(
	sender MessageSender,
	subscribers repository.SubscriberRepository,
	minInterval time.Duration,
	clock Clock,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		subscribers: subscribers,
		clock:       clock,
		minInterval: minInterval,
		log:         log,
	}
}

var _ scan.Notifier = (*Dispatcher)(nil)

// Broadcast envía el mensaje del evento a cada suscriptor vigente antes de
// retornar (el siguiente evento espera a que termine este). Un fallo
// permanente elimina al suscriptor del registro y continúa con el resto;
// cualquier otro fallo se loguea y ese envío se omite sin abortar el resto.
func (d *Dispatcher) Broadcast(ctx context.Context, event scan.RestockEvent) {
	text := renderMessage(event)

	subs, err := d.subscribers.ListAll()
	if err != nil {
		d.log.Error().Err(err).Msg("listar suscriptores")
		return
	}

	for _, sub := range subs {
		d.throttle()

		err := d.sender.Send(ctx, sub.ChatID, text)
		d.lastSent = d.clock.Now()

		switch {
		case errors.Is(err, domain.ErrRecipientGone):
			// Estado estable esperado: el usuario bloqueó al bot o borró el chat.
			if rmErr := d.subscribers.Remove(sub.ChatID); rmErr != nil {
				d.log.Error().Err(rmErr).Int64("chat_id", sub.ChatID).Msg("eliminar suscriptor")
			} else {
				d.log.Info().Int64("chat_id", sub.ChatID).Msg("suscriptor inalcanzable eliminado")
			}
		case err != nil:
			d.log.Error().Err(err).Int64("chat_id", sub.ChatID).Msg("enviar notificación")
		}
	}
}

// throttle suspende hasta que haya pasado el intervalo mínimo desde el último envío.
func (d *Dispatcher) throttle() {
	if d.lastSent.IsZero() {
		return
	}
	elapsed := d.clock.Now().Sub(d.lastSent)
	if elapsed < d.minInterval {
		d.clock.Sleep(d.minInterval - elapsed)
	}
}

// renderMessage produce el texto Markdown de la notificación.
// El id lleva el prefijo 0000 con el que el catálogo muestra sus códigos.
func renderMessage(e scan.RestockEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *Reabastecimiento en almacén %s:*\n", e.WarehouseName)
	fmt.Fprintf(&b, "🆔 ID: `0000%d`\n", e.ProductID)
	fmt.Fprintf(&b, "📦 Producto: *%s*\n", e.ProductName)
	fmt.Fprintf(&b, "📉 Antes: %d\n", e.PreviousCount)
	fmt.Fprintf(&b, "📈 Ahora: %d", e.NewCount)
	if e.BoxSize > 0 {
		fmt.Fprintf(&b, "\n📐 Caja: %d uds", e.BoxSize)
	}
	return b.String()
}
