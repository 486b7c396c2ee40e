package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/entity"
	"github.com/oleg-creator-arch/tg-bot-greenleaf/internal/domain/repository"
)

var _ repository.SubscriberRepository = (*SubscriberRepo)(nil)

// SubscriberRepo implementación del registro de suscriptores sobre PostgreSQL.
type SubscriberRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriberRepository construye el adaptador de suscriptores.
func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

// Add da de alta un chat. ON CONFLICT DO NOTHING la hace idempotente.
func (r *SubscriberRepo) Add(chatID int64) error {
	query := `
		INSERT INTO subscribers (chat_id, created_at)
		VALUES ($1, now())
		ON CONFLICT (chat_id) DO NOTHING`
	_, err := r.pool.Exec(context.Background(), query, chatID)
	if err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}
	return nil
}

// Remove da de baja un chat. Eliminar uno inexistente no es un error.
func (r *SubscriberRepo) Remove(chatID int64) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM subscribers WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	return nil
}

// ListAll devuelve todos los suscriptores vigentes.
func (r *SubscriberRepo) ListAll() ([]*entity.Subscriber, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT chat_id, created_at FROM subscribers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Subscriber
	for rows.Next() {
		var s entity.Subscriber
		if err := rows.Scan(&s.ChatID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return out, nil
}

// Count devuelve el total de suscriptores.
func (r *SubscriberRepo) Count() (int64, error) {
	var n int64
	err := r.pool.QueryRow(context.Background(), `SELECT count(*) FROM subscribers`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}
