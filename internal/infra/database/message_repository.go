package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"wabridge/internal/domain/message"
)

// messageRepository implementa message.Repository sobre PostgreSQL
type messageRepository struct {
	db *bun.DB
}

// NewMessageRepository cria uma nova instância do repositório de mensagens
func NewMessageRepository(db *bun.DB) message.Repository {
	return &messageRepository{db: db}
}

// Save grava o registro; um ID repetido substitui o anterior
func (r *messageRepository) Save(ctx context.Context, record *message.Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("conversation_id = EXCLUDED.conversation_id").
		Set("sender_id = EXCLUDED.sender_id").
		Set("text = EXCLUDED.text").
		Exec(ctx)
	return err
}

// GetByID busca um registro pelo ID da mensagem
func (r *messageRepository) GetByID(ctx context.Context, id string) (*message.Record, error) {
	record := new(message.Record)
	err := r.db.NewSelect().Model(record).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, message.ErrMessageNotFound
		}
		return nil, err
	}
	return record, nil
}

// DeleteOlderThan remove registros anteriores a cutoff
func (r *messageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*message.Record)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
