package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/domain/lotledger"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/crypto"
	"github.com/ecopanier/backend/pkg/dateutil"
	"github.com/ecopanier/backend/pkg/errorx"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxPinAttempts = 10

type ReservationDomain interface {
	Reserve(context.Context, *model.ReserveLotRequest) (*model.ReserveLotResponse, error)
	Complete(context.Context, *model.CompleteReservationRequest) (*model.CompleteReservationResponse, error)
	Cancel(context.Context, *model.CancelReservationRequest) (*model.CancelReservationResponse, error)
	GetMyReservations(context.Context, *model.GetMyReservationsRequest) (*model.GetMyReservationsResponse, error)
}

type reservationDomain struct {
	reservationRepo repository.ReservationRepository
	lotRepo         repository.LotRepository
	dailyLimitRepo  repository.BeneficiaryDailyLimitRepository
	userRepo        repository.UserRepository
	notifier        client.Notifier
}

func NewReservationDomain(
	reservationRepo repository.ReservationRepository,
	lotRepo repository.LotRepository,
	dailyLimitRepo repository.BeneficiaryDailyLimitRepository,
	userRepo repository.UserRepository,
	notifier client.Notifier,
) *reservationDomain {
	return &reservationDomain{
		reservationRepo: reservationRepo,
		lotRepo:         lotRepo,
		dailyLimitRepo:  dailyLimitRepo,
		userRepo:        userRepo,
		notifier:        notifier,
	}
}

func (d *reservationDomain) Reserve(
	ctx context.Context, req *model.ReserveLotRequest,
) (*model.ReserveLotResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	if req.Quantity < 1 {
		return nil, errorx.New(errorx.BadRequest, "Quantity must be a positive number")
	}

	lot, err := d.lotRepo.GetByID(ctx, req.LotID)
	if err != nil {
		// A lot removed by the cleanup sweep is indistinguishable from a lot
		// that never existed; both surface as unavailable.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.LotUnavailable, "This lot is no longer available")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lot: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := lotledger.Reserve(lotledger.Of(lot), req.Quantity); err != nil {
		return nil, errorx.New(errorx.LotUnavailable, "Not enough stock left on this lot")
	}

	if req.IsDonation && !lot.IsFree {
		return nil, errorx.New(errorx.BadRequest, "This lot is not a free donation")
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	cfg := xcontext.Configs(ctx).Lot
	isDonation := req.IsDonation || lot.IsFree

	if isDonation && user.Role == entity.RoleBeneficiary {
		err := d.dailyLimitRepo.CheckAndIncrement(
			ctx, userID, dateutil.DateKey(time.Now()), cfg.MaxDailyBeneficiaryReservations)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.DailyQuotaExceeded,
					"You reached your daily limit of %d free reservations",
					cfg.MaxDailyBeneficiaryReservations)
			}

			xcontext.Logger(ctx).Errorf("Cannot increment daily limit: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := d.lotRepo.CheckAndReserve(ctx, lot.ID, req.Quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.LotUnavailable, "Not enough stock left on this lot")
		}

		xcontext.Logger(ctx).Errorf("Cannot reserve lot quantity: %v", err)
		return nil, errorx.Unknown
	}

	pin, err := d.generatePin(ctx, lot.ID, cfg.PickupPinLength)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate a pickup pin: %v", err)
		return nil, errorx.Unknown
	}

	totalPrice := int64(0)
	if !lot.IsFree {
		totalPrice = lot.DiscountedPrice * int64(req.Quantity)
	}

	reservation := &entity.Reservation{
		Base:       entity.Base{ID: uuid.NewString()},
		LotID:      lot.ID,
		UserID:     userID,
		Quantity:   req.Quantity,
		TotalPrice: totalPrice,
		PickupPin:  pin,
		Status:     entity.ReservationPending,
		IsDonation: isDonation,
	}

	if err := d.reservationRepo.Create(ctx, reservation); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create reservation: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.notifier.Publish(ctx, client.ReservationEvent{
		Type:          client.EventReserved,
		ReservationID: reservation.ID,
		LotID:         lot.ID,
		UserID:        userID,
		Quantity:      req.Quantity,
	})

	return &model.ReserveLotResponse{
		ReservationID: reservation.ID,
		PickupPin:     pin,
	}, nil
}

// generatePin draws a fixed-width numeric credential and checks it against the
// other active reservations of the same lot. Global uniqueness is not needed,
// a PIN only disambiguates pickups at one merchant's counter.
func (d *reservationDomain) generatePin(ctx context.Context, lotID string, length int) (string, error) {
	for i := 0; i < maxPinAttempts; i++ {
		pin := crypto.GenerateRandomDigits(length)
		count, err := d.reservationRepo.CountActivePin(ctx, lotID, pin)
		if err != nil {
			return "", err
		}

		if count == 0 {
			return pin, nil
		}
	}

	return "", errors.New("cannot find an unused pin")
}

func (d *reservationDomain) Complete(
	ctx context.Context, req *model.CompleteReservationRequest,
) (*model.CompleteReservationResponse, error) {
	reservation, err := d.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		// An unknown reservation answers exactly like a wrong pin, so a caller
		// cannot probe which reservation ids exist.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidPin, "Invalid pickup pin")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reservation: %v", err)
		return nil, errorx.Unknown
	}

	if req.PickupPin != reservation.PickupPin {
		return nil, errorx.New(errorx.InvalidPin, "Invalid pickup pin")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.reservationRepo.CheckAndComplete(ctx, reservation.ID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyFinalized, "This reservation is already finalized")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete reservation: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.lotRepo.Fulfill(ctx, reservation.LotID, reservation.Quantity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot fulfill lot quantity: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.notifier.Publish(ctx, client.ReservationEvent{
		Type:          client.EventCompleted,
		ReservationID: reservation.ID,
		LotID:         reservation.LotID,
		UserID:        reservation.UserID,
		Quantity:      reservation.Quantity,
	})

	return &model.CompleteReservationResponse{}, nil
}

// Cancel releases a pending reservation back to the lot's stock. The daily
// quota slot is not refunded; giving the slot back would let a beneficiary
// cycle reserve/cancel to hold stock all day.
func (d *reservationDomain) Cancel(
	ctx context.Context, req *model.CancelReservationRequest,
) (*model.CancelReservationResponse, error) {
	reservation, err := d.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reservation")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reservation: %v", err)
		return nil, errorx.Unknown
	}

	if userID := xcontext.RequestUserID(ctx); userID != "" && userID != reservation.UserID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.reservationRepo.CheckAndCancel(ctx, reservation.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyFinalized, "This reservation is already finalized")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel reservation: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.lotRepo.Release(ctx, reservation.LotID, reservation.Quantity); err != nil {
		// The lot may be gone already; the cancellation itself still stands.
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot release lot quantity: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.notifier.Publish(ctx, client.ReservationEvent{
		Type:          client.EventCancelled,
		ReservationID: reservation.ID,
		LotID:         reservation.LotID,
		UserID:        reservation.UserID,
		Quantity:      reservation.Quantity,
	})

	return &model.CancelReservationResponse{}, nil
}

func (d *reservationDomain) GetMyReservations(
	ctx context.Context, req *model.GetMyReservationsRequest,
) (*model.GetMyReservationsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to sign in first")
	}

	reservations, err := d.reservationRepo.GetListByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reservations: %v", err)
		return nil, errorx.Unknown
	}

	clientReservations := []model.Reservation{}
	for i := range reservations {
		clientReservations = append(clientReservations, convertReservation(&reservations[i]))
	}

	return &model.GetMyReservationsResponse{Reservations: clientReservations}, nil
}
