package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/enum"
	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AbsenceAction string

var (
	AbsenceWait     = enum.New(AbsenceAction("wait"))
	AbsenceReassign = enum.New(AbsenceAction("reassign"))
	AbsenceMarkLost = enum.New(AbsenceAction("mark_lost"))
)

type AbsenceDomain interface {
	ResolveAbsence(context.Context, *model.ResolveAbsenceRequest) (*model.ResolveAbsenceResponse, error)
}

type absenceDomain struct {
	reservationRepo repository.ReservationRepository
	lotRepo         repository.LotRepository
	notifier        client.Notifier
}

func NewAbsenceDomain(
	reservationRepo repository.ReservationRepository,
	lotRepo repository.LotRepository,
	notifier client.Notifier,
) *absenceDomain {
	return &absenceDomain{
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		notifier:        notifier,
	}
}

// ResolveAbsence lets the merchant of a lot decide what happens to a
// reservation whose holder did not show up within the pickup window.
func (d *absenceDomain) ResolveAbsence(
	ctx context.Context, req *model.ResolveAbsenceRequest,
) (*model.ResolveAbsenceResponse, error) {
	action, err := enum.ToEnum[AbsenceAction](req.Action)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid absence action %s", req.Action)
	}

	reservation, err := d.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reservation")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reservation: %v", err)
		return nil, errorx.Unknown
	}

	lot, err := d.lotRepo.GetByID(ctx, reservation.LotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found lot of this reservation")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lot: %v", err)
		return nil, errorx.Unknown
	}

	if userID := xcontext.RequestUserID(ctx); userID != lot.MerchantID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the merchant of this lot can resolve absences")
	}

	now := time.Now()
	deadline := lot.PickupEnd
	if reservation.PickupGraceUntil.Valid && reservation.PickupGraceUntil.Time.After(deadline) {
		deadline = reservation.PickupGraceUntil.Time
	}

	if !now.After(deadline) {
		return nil, errorx.New(errorx.BadRequest, "The pickup window of this reservation is still open")
	}

	switch action {
	case AbsenceWait:
		return d.resolveWait(ctx, reservation, now)
	case AbsenceReassign:
		return d.resolveReassign(ctx, reservation, lot, now)
	case AbsenceMarkLost:
		return d.resolveMarkLost(ctx, reservation, lot)
	}

	return nil, errorx.New(errorx.BadRequest, "Invalid absence action %s", req.Action)
}

func (d *absenceDomain) resolveWait(
	ctx context.Context, reservation *entity.Reservation, now time.Time,
) (*model.ResolveAbsenceResponse, error) {
	grace := xcontext.Configs(ctx).Lot.AbsenceGracePeriod
	err := d.reservationRepo.SetGraceUntil(ctx, reservation.ID, now.Add(grace))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyFinalized, "This reservation is already finalized")
		}

		xcontext.Logger(ctx).Errorf("Cannot extend the pickup window: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ResolveAbsenceResponse{}, nil
}

// resolveReassign cancels the reservation, returns its stock, and republishes
// the lot as a free donation with a fresh one-day pickup window.
func (d *absenceDomain) resolveReassign(
	ctx context.Context, reservation *entity.Reservation, lot *entity.Lot, now time.Time,
) (*model.ResolveAbsenceResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.reservationRepo.CheckAndCancel(ctx, reservation.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyFinalized, "This reservation is already finalized")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel reservation: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.lotRepo.Release(ctx, lot.ID, reservation.Quantity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release lot quantity: %v", err)
		return nil, errorx.Unknown
	}

	err := d.lotRepo.CheckAndConvertToFree(ctx, lot.ID, now, now.AddDate(0, 0, 1))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot convert lot to free: %v", err)
			return nil, errorx.Unknown
		}

		// Already free, so the conversion guard fired zero rows. The window is
		// past pickup-end here, reopen it so the released stock is listed again.
		err := d.lotRepo.ReschedulePickup(ctx, lot.ID, now, now.AddDate(0, 0, 1))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot reschedule the pickup window: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.notifier.Publish(ctx, client.ReservationEvent{
		Type:          client.EventConverted,
		ReservationID: reservation.ID,
		LotID:         lot.ID,
		UserID:        reservation.UserID,
		Quantity:      reservation.Quantity,
	})

	return &model.ResolveAbsenceResponse{}, nil
}

func (d *absenceDomain) resolveMarkLost(
	ctx context.Context, reservation *entity.Reservation, lot *entity.Lot,
) (*model.ResolveAbsenceResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.reservationRepo.CheckAndCancel(ctx, reservation.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyFinalized, "This reservation is already finalized")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel reservation: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.lotRepo.Release(ctx, lot.ID, reservation.Quantity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release lot quantity: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	xcontext.Logger(ctx).Warnf("Marked %d unit(s) of lot %s as lost food waste",
		reservation.Quantity, lot.ID)

	d.notifier.Publish(ctx, client.ReservationEvent{
		Type:          client.EventLost,
		ReservationID: reservation.ID,
		LotID:         lot.ID,
		UserID:        reservation.UserID,
		Quantity:      reservation.Quantity,
	})

	return &model.ResolveAbsenceResponse{}, nil
}
