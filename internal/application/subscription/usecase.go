package subscription

import "github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"

// UseCase gestiona el alta y baja de suscriptores (delegando en el registro).
type UseCase struct {
	subscribers repository.SubscriberRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(subscribers repository.SubscriberRepository) *UseCase {
	return &UseCase{subscribers: subscribers}
}

// Subscribe da de alta un chat. Idempotente.
func (uc *UseCase) Subscribe(chatID int64) error {
	return uc.subscribers.Add(chatID)
}

// Unsubscribe da de baja un chat. Idempotente.
func (uc *UseCase) Unsubscribe(chatID int64) error {
	return uc.subscribers.Remove(chatID)
}
