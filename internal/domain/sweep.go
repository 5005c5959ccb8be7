package domain

import (
	"context"
	"errors"
	"net/url"
	"path"
	"time"

	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/storage"
	"github.com/ecopanier/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SweepDomain interface {
	ConvertExpiringLots(ctx context.Context) (int, error)
	CleanupUnclaimedLots(ctx context.Context) (deletedLots, cancelledReservations int, err error)
	RunExpirationSweep(context.Context, *model.RunExpirationSweepRequest) (*model.RunExpirationSweepResponse, error)
}

type sweepDomain struct {
	lotRepo         repository.LotRepository
	reservationRepo repository.ReservationRepository
	storage         storage.Storage
	notifier        client.Notifier
}

func NewSweepDomain(
	lotRepo repository.LotRepository,
	reservationRepo repository.ReservationRepository,
	storage storage.Storage,
	notifier client.Notifier,
) *sweepDomain {
	return &sweepDomain{
		lotRepo:         lotRepo,
		reservationRepo: reservationRepo,
		storage:         storage,
		notifier:        notifier,
	}
}

// ConvertExpiringLots turns paid lots nearing the end of their pickup window
// into free donations with a one-day pickup window. Every lot is attempted
// independently; one failure never aborts the batch.
func (d *sweepDomain) ConvertExpiringLots(ctx context.Context) (int, error) {
	now := time.Now()
	lookahead := xcontext.Configs(ctx).Lot.FreeConversionLookahead

	lots, err := d.lotRepo.GetExpiringLots(ctx, now, lookahead)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot scan for expiring lots: %v", err)
		return 0, errorx.Unknown
	}

	converted := 0
	for _, lot := range lots {
		err := d.lotRepo.CheckAndConvertToFree(ctx, lot.ID, now, now.AddDate(0, 0, 1))
		if err != nil {
			// Zero rows means another sweep or an absence resolution converted
			// this lot since the scan.
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot convert lot %s to free: %v", lot.ID, err)
			}
			continue
		}

		converted++
		d.notifier.Publish(ctx, client.ReservationEvent{
			Type:  client.EventConverted,
			LotID: lot.ID,
		})
	}

	return converted, nil
}

// CleanupUnclaimedLots removes lots that stayed unclaimed for the retention
// period past their pickup window, cancelling whatever active reservations
// are still attached. Completed reservations keep their rows; only the lot
// and its images go away.
func (d *sweepDomain) CleanupUnclaimedLots(ctx context.Context) (int, int, error) {
	cutoff := time.Now().Add(-xcontext.Configs(ctx).Lot.UnclaimedRetention)

	lots, err := d.lotRepo.GetUnclaimedLots(ctx, cutoff)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot scan for unclaimed lots: %v", err)
		return 0, 0, errorx.Unknown
	}

	deleted := 0
	cancelled := 0
	for i := range lots {
		n, err := d.cleanupLot(ctx, &lots[i], cutoff)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot clean up lot %s: %v", lots[i].ID, err)
			}
			continue
		}

		deleted++
		cancelled += int(n)
	}

	return deleted, cancelled, nil
}

func (d *sweepDomain) cleanupLot(ctx context.Context, lot *entity.Lot, cutoff time.Time) (int64, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	cancelled, err := d.reservationRepo.CancelAllActiveByLotID(ctx, lot.ID)
	if err != nil {
		return 0, err
	}

	if err := d.lotRepo.CheckAndDelete(ctx, lot.ID, cutoff); err != nil {
		return 0, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	// Image removal is best-effort; a leaked object costs storage, a failed
	// cleanup run would cost correctness.
	bucket := xcontext.Configs(ctx).Lot.ImageBucket
	for _, imageURL := range lot.ImageURLs {
		if err := d.storage.Delete(ctx, bucket, objectName(imageURL)); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot delete image %s of lot %s: %v", imageURL, lot.ID, err)
		}
	}

	return cancelled, nil
}

func objectName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return path.Base(imageURL)
	}

	return path.Base(u.Path)
}

// RunExpirationSweep runs both passes back to back, the way the periodic jobs
// do, and reports the counts. Exposed for operators to trigger on demand.
func (d *sweepDomain) RunExpirationSweep(
	ctx context.Context, req *model.RunExpirationSweepRequest,
) (*model.RunExpirationSweepResponse, error) {
	converted, err := d.ConvertExpiringLots(ctx)
	if err != nil {
		return nil, err
	}

	deleted, cancelled, err := d.CleanupUnclaimedLots(ctx)
	if err != nil {
		return nil, err
	}

	return &model.RunExpirationSweepResponse{
		ConvertedCount:        converted,
		DeletedLots:           deleted,
		CancelledReservations: cancelled,
	}, nil
}
