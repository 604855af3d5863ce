package service

import (
	"context"
	"time"

	"github.com/flokiorg/lokirent/logger"
)

// startSweeper runs the expiry sweep and the stale order cleanup every
// SWEEP_INTERVAL until ctx is cancelled or the service shuts down.
func (svc *service) startSweeper(ctx context.Context) {
	interval := svc.cfg.GetEnv().SweepInterval
	if interval <= 0 {
		logger.Logger.Warn().Msg("SWEEP_INTERVAL is not positive, expiry sweep disabled")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	svc.sweepCancel = cancel

	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		svc.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.sweep(ctx)
			}
		}
	}()
}

func (svc *service) sweep(ctx context.Context) {
	result, err := svc.rentalsSvc.ExpirySweep(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Expiry sweep failed")
	} else if result.Expired > 0 || result.Failed > 0 {
		logger.Logger.Info().
			Int("expired", result.Expired).
			Int("failed", result.Failed).
			Msg("Expiry sweep finished")
	}

	if _, err := svc.ordersSvc.ExpireStaleOrders(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to expire stale orders")
	}
}
