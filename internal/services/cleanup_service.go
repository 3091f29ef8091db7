package services

import (
	"context"
	"log/slog"
	"time"

	"rental-system/config"
)

// CleanupService periodically cancels stale pending reservations whose
// payment window has lapsed.
type CleanupService struct {
	reservations *ReservationService
	cfg          *config.Config
}

func NewCleanupService(reservations *ReservationService, cfg *config.Config) *CleanupService {
	return &CleanupService{reservations: reservations, cfg: cfg}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (c *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := c.reservations.ExpirePending(ctx, c.cfg.PendingReservationTTL)
			if err != nil {
				slog.Error("reservation cleanup sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				slog.Info("expired stale pending reservations", "count", expired)
			}
		}
	}
}
