package database

import (
	"context"
	"time"

	"wabridge/internal/domain/message"
	"wabridge/pkg/logger"
)

// RunRetention remove periodicamente registros mais antigos que retention
// até ctx ser cancelado
func RunRetention(ctx context.Context, repo message.Repository, retention, interval time.Duration, log logger.Logger) {
	if retention <= 0 || interval <= 0 {
		return
	}
	log = log.WithComponent("journal-retention")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteOlderThan(ctx, now.Add(-retention))
			if err != nil {
				log.WithError(err).Warn().Msg("Failed to prune message journal")
				continue
			}
			if n > 0 {
				log.WithField("removed", n).Info().Msg("Message journal pruned")
			}
		}
	}
}
