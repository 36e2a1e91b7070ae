package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"wabridge/internal/domain/message"
)

func TestMemoryRepositorySaveAndGet(t *testing.T) {
	repo := NewMemoryRepository(time.Hour)
	ctx := context.Background()

	rec := &message.Record{ID: "M1", ConversationID: "5511@s.whatsapp.net", Direction: message.DirectionInbound, Kind: "text", Text: "oi"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "M1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ConversationID != rec.ConversationID || got.CreatedAt.IsZero() {
		t.Fatalf("GetByID() = %+v", got)
	}

	// o registro devolvido é uma cópia
	got.Text = "changed"
	again, _ := repo.GetByID(ctx, "M1")
	if again.Text != "oi" {
		t.Fatalf("stored record was mutated through the returned copy")
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, message.ErrMessageNotFound) {
		t.Fatalf("GetByID(missing) error = %v, want ErrMessageNotFound", err)
	}
}

func TestMemoryRepositoryDeleteOlderThan(t *testing.T) {
	repo := NewMemoryRepository(time.Hour)
	ctx := context.Background()
	now := time.Now()

	_ = repo.Save(ctx, &message.Record{ID: "old", CreatedAt: now.Add(-2 * time.Hour)})
	_ = repo.Save(ctx, &message.Record{ID: "new", CreatedAt: now})

	n, err := repo.DeleteOlderThan(ctx, now.Add(-time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteOlderThan() = %d, %v, want 1", n, err)
	}
	if _, err := repo.GetByID(ctx, "old"); !errors.Is(err, message.ErrMessageNotFound) {
		t.Fatalf("old record still present")
	}
	if _, err := repo.GetByID(ctx, "new"); err != nil {
		t.Fatalf("new record removed: %v", err)
	}
}
