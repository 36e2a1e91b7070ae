// Package database implementa o diário de mensagens (PostgreSQL via bun ou memória).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"wabridge/internal/domain/message"
	"wabridge/pkg/logger"
)

// NewDatabase cria uma nova conexão com o banco de dados PostgreSQL
func NewDatabase(ctx context.Context, dsn string, debug bool, log logger.Logger) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	db := bun.NewDB(sqldb, pgdialect.New())

	// Habilitar logging de queries se necessário
	if debug {
		db.AddQueryHook(logger.NewBunQueryHook(log))
	}

	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(10)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	return db, nil
}

// RunMigrations cria a tabela do diário e o índice por data
func RunMigrations(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*message.Record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*message.Record)(nil)).
		Index("bridge_messages_created_at_idx").
		Column("created_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}

	return nil
}
