package cron

import (
	"context"
	"time"

	"github.com/ecopanier/backend/internal/domain"
	"github.com/ecopanier/backend/pkg/xcontext"
)

// UnclaimedLotCronJob periodically removes lots left unclaimed past the
// retention period, together with their still-active reservations and images.
type UnclaimedLotCronJob struct {
	sweepDomain domain.SweepDomain
	interval    time.Duration
}

func NewUnclaimedLotCronJob(ctx context.Context, sweepDomain domain.SweepDomain) *UnclaimedLotCronJob {
	return &UnclaimedLotCronJob{
		sweepDomain: sweepDomain,
		interval:    xcontext.Configs(ctx).Lot.CleanupInterval,
	}
}

func (job *UnclaimedLotCronJob) Do(ctx context.Context) {
	deleted, cancelled, err := job.sweepDomain.CleanupUnclaimedLots(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clean up unclaimed lots: %v", err)
		return
	}

	if deleted > 0 {
		xcontext.Logger(ctx).Infof("Removed %d unclaimed lot(s), cancelled %d reservation(s)",
			deleted, cancelled)
	}
}

func (job *UnclaimedLotCronJob) RunNow() bool {
	return false
}

func (job *UnclaimedLotCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
