package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/notify"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/application/subscription"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/pkg/logger"
)

const (
	replyStart = "👋 ¡Hola! Este es el bot de GreenLeaf 🌿\nQuedaste suscrito: recibirás avisos cuando un producto vuelva a stock."
	replyStop  = "Listo, no recibirás más avisos. Escribe /start para volver a suscribirte."
	replyHelp  = "/start — suscribirse a los avisos de reabastecimiento\n/stop — darse de baja\n/help — esta ayuda"
)

var _ notify.MessageSender = (*Bot)(nil)

// Bot adaptador de Telegram: atiende los comandos del front-end
// (/start, /stop, /help) y a la vez implementa el puerto MessageSender
// del despachador de notificaciones.
type Bot struct {
	api  *tgbotapi.BotAPI
	subs *subscription.UseCase
	log  *logger.Logger
}

// NewBot construye el bot con el token del proveedor.
func NewBot(token string, subs *subscription.UseCase, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("crear bot de Telegram: %w", err)
	}
	return &Bot{api: api, subs: subs, log: log}, nil
}

// Run consume actualizaciones por long polling hasta que el contexto se cancele.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info().Str("bot", b.api.Self.UserName).Msg("bot de Telegram escuchando")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if err := b.subs.Subscribe(chatID); err != nil {
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("suscribir chat")
			return
		}
		b.reply(chatID, replyStart)
	case "stop":
		if err := b.subs.Unsubscribe(chatID); err != nil {
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("desuscribir chat")
			return
		}
		b.reply(chatID, replyStop)
	default:
		b.reply(chatID, replyHelp)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("responder comando")
	}
}

// Send implementa notify.MessageSender. Un 403 del proveedor (el usuario
// bloqueó al bot o la cuenta ya no existe) y el "chat not found" se traducen
// a domain.ErrRecipientGone para que el despachador dé de baja al suscriptor.
func (b *Bot) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(msg)
	if err == nil {
		return nil
	}
	if isRecipientGone(err) {
		return fmt.Errorf("%w: %s", domain.ErrRecipientGone, err.Error())
	}
	return fmt.Errorf("%w: %s", domain.ErrDeliveryFailed, err.Error())
}

// isRecipientGone clasifica los errores del proveedor que indican un
// destinatario definitivamente inalcanzable.
func isRecipientGone(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 {
			return true
		}
		if strings.Contains(apiErr.Message, "chat not found") {
			return true
		}
	}
	return false
}
