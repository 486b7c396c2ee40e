package repository

import "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"

// SubscriberRepository define el puerto del registro de suscriptores.
// Add y Remove son idempotentes: agregar un chat ya suscrito o eliminar
// uno inexistente no es un error.
type SubscriberRepository interface {
	Add(chatID int64) error
	Remove(chatID int64) error
	ListAll() ([]*entity.Subscriber, error)
	Count() (int64, error)
}
