package message

import (
	"context"
	"time"
)

// Repository define o diário de mensagens
type Repository interface {
	// Save grava ou substitui um registro
	Save(ctx context.Context, record *Record) error

	// GetByID busca um registro; retorna ErrMessageNotFound quando ausente
	GetByID(ctx context.Context, id string) (*Record, error)

	// DeleteOlderThan remove registros anteriores a cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
