package services

import (
	"context"
	"log"
	"time"
)

// PurgeOldTransactions deletes completed ledger rows older than the horizon.
// Balances are authoritative and never recomputed from history, so the purge
// cannot desynchronize anything; it exists for storage hygiene only.
func (s *Ledger) PurgeOldTransactions(ctx context.Context, horizon time.Duration) (int64, error) {
	cutoff := time.Now().Add(-horizon)
	return s.transactions.DeleteOlderThan(ctx, cutoff)
}

// RunRetentionSweeper purges on a fixed interval until the context is
// cancelled. Started from main alongside the HTTP server.
func (s *Ledger) RunRetentionSweeper(ctx context.Context, every, horizon time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeOldTransactions(ctx, horizon)
			if err != nil {
				log.Printf("retention sweep failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("retention sweep purged %d transactions", purged)
			}
		}
	}
}
