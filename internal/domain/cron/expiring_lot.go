package cron

import (
	"context"
	"time"

	"github.com/ecopanier/backend/internal/domain"
	"github.com/ecopanier/backend/pkg/xcontext"
)

// ExpiringLotCronJob periodically converts paid lots close to the end of their
// pickup window into free donations.
type ExpiringLotCronJob struct {
	sweepDomain domain.SweepDomain
	interval    time.Duration
}

func NewExpiringLotCronJob(ctx context.Context, sweepDomain domain.SweepDomain) *ExpiringLotCronJob {
	return &ExpiringLotCronJob{
		sweepDomain: sweepDomain,
		interval:    xcontext.Configs(ctx).Lot.ConversionInterval,
	}
}

func (job *ExpiringLotCronJob) Do(ctx context.Context) {
	converted, err := job.sweepDomain.ConvertExpiringLots(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot convert expiring lots: %v", err)
		return
	}

	if converted > 0 {
		xcontext.Logger(ctx).Infof("Converted %d expiring lot(s) to free donations", converted)
	}
}

func (job *ExpiringLotCronJob) RunNow() bool {
	return true
}

func (job *ExpiringLotCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
