package entity

import "time"

// Subscriber un chat de Telegram suscrito a las notificaciones de reabastecimiento.
type Subscriber struct {
	ChatID    int64
	CreatedAt time.Time
}
