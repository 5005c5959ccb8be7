package domain

import (
	"context"
	"testing"
	"time"

	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestReservationDomain() *reservationDomain {
	return NewReservationDomain(
		repository.NewReservationRepository(),
		repository.NewLotRepository(),
		repository.NewBeneficiaryDailyLimitRepository(),
		repository.NewUserRepository(),
		client.NewRedisNotifier(&testutil.MockRedisClient{}),
	)
}

func insertLot(t *testing.T, ctx context.Context, lot *entity.Lot) *entity.Lot {
	t.Helper()

	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	if lot.MerchantID == "" {
		lot.MerchantID = testutil.Merchant1.ID
	}
	if lot.Status == "" {
		lot.Status = entity.LotAvailable
	}
	if lot.PickupStart.IsZero() {
		lot.PickupStart = time.Now().Add(time.Hour)
	}
	if lot.PickupEnd.IsZero() {
		lot.PickupEnd = time.Now().Add(3 * time.Hour)
	}

	require.NoError(t, repository.NewLotRepository().Create(ctx, lot))
	return lot
}

func Test_reservationDomain_FullScenario(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:           "Evening bakery basket",
		OriginalPrice:   1500,
		DiscountedPrice: 500,
		QuantityTotal:   5,
	})

	// Reserve two units as a customer.
	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	reserveResp, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, reserveResp.ReservationID)
	require.Len(t, reserveResp.PickupPin, 6)

	updatedLot, err := repository.NewLotRepository().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updatedLot.QuantityReserved)
	require.Equal(t, entity.LotReserved, updatedLot.Status)

	// A wrong pin does not complete the reservation.
	_, err = reservationDomain.Complete(ctx, &model.CompleteReservationRequest{
		ReservationID: reserveResp.ReservationID,
		PickupPin:     "000000x",
	})
	require.Equal(t, "Invalid pickup pin", err.Error())

	reservation, err := repository.NewReservationRepository().GetByID(ctx, reserveResp.ReservationID)
	require.NoError(t, err)
	require.Equal(t, entity.ReservationPending, reservation.Status)

	// The right pin moves the quantity from reserved to sold.
	_, err = reservationDomain.Complete(ctx, &model.CompleteReservationRequest{
		ReservationID: reserveResp.ReservationID,
		PickupPin:     reserveResp.PickupPin,
	})
	require.NoError(t, err)

	reservation, err = repository.NewReservationRepository().GetByID(ctx, reserveResp.ReservationID)
	require.NoError(t, err)
	require.Equal(t, entity.ReservationCompleted, reservation.Status)
	require.True(t, reservation.CompletedAt.Valid)
	require.Equal(t, int64(1000), reservation.TotalPrice)

	updatedLot, err = repository.NewLotRepository().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 0, updatedLot.QuantityReserved)
	require.Equal(t, 2, updatedLot.QuantitySold)

	// Completing twice fails.
	_, err = reservationDomain.Complete(ctx, &model.CompleteReservationRequest{
		ReservationID: reserveResp.ReservationID,
		PickupPin:     reserveResp.PickupPin,
	})
	require.Equal(t, "This reservation is already finalized", err.Error())
}

func Test_reservationDomain_Reserve_NeverOversells(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:           "Last crates",
		DiscountedPrice: 300,
		QuantityTotal:   2,
	})

	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)

	// Three one-unit attempts against two units of stock: exactly two succeed.
	succeeded := 0
	for i := 0; i < 3; i++ {
		_, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
			LotID:    lot.ID,
			Quantity: 1,
		})
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, "Not enough stock left on this lot", err.Error())
		}
	}
	require.Equal(t, 2, succeeded)

	updatedLot, err := repository.NewLotRepository().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updatedLot.QuantityReserved)
	require.Equal(t, 0, updatedLot.Remainder())
	require.Equal(t, entity.LotSoldOut, updatedLot.Status)
}

func Test_reservationDomain_Reserve_BeneficiaryDailyQuota(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:         "Free soup batch",
		QuantityTotal: 10,
		IsFree:        true,
	})

	ctxBeneficiary := testutil.MockContextWithUserID(ctx, testutil.Beneficiary1.ID)

	// The first two free reservations of the day go through.
	for i := 0; i < 2; i++ {
		resp, err := reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
			LotID:    lot.ID,
			Quantity: 1,
		})
		require.NoError(t, err)
		require.True(t, resp.PickupPin != "")
	}

	// The third hits the daily cap even though stock remains.
	_, err := reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 1,
	})
	require.Equal(t, "You reached your daily limit of 2 free reservations", err.Error())

	updatedLot, err := repository.NewLotRepository().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updatedLot.QuantityReserved)

	// A customer is not subject to the beneficiary quota.
	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	for i := 0; i < 3; i++ {
		_, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
			LotID:    lot.ID,
			Quantity: 1,
		})
		require.NoError(t, err)
	}
}

// collidingReservationRepository reports a taken pin for the first collisions
// pin checks, then defers to the real repository.
type collidingReservationRepository struct {
	repository.ReservationRepository
	collisions int
	pinChecks  []string
}

func (r *collidingReservationRepository) CountActivePin(
	ctx context.Context, lotID, pin string,
) (int64, error) {
	r.pinChecks = append(r.pinChecks, pin)
	if r.collisions > 0 {
		r.collisions--
		return 1, nil
	}

	return r.ReservationRepository.CountActivePin(ctx, lotID, pin)
}

func Test_reservationDomain_Reserve_RetriesCollidingPins(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	reservationRepo := &collidingReservationRepository{
		ReservationRepository: repository.NewReservationRepository(),
		collisions:            2,
	}
	reservationDomain := NewReservationDomain(
		reservationRepo,
		repository.NewLotRepository(),
		repository.NewBeneficiaryDailyLimitRepository(),
		repository.NewUserRepository(),
		client.NewRedisNotifier(&testutil.MockRedisClient{}),
	)

	lot := insertLot(t, ctx, &entity.Lot{
		Title:           "Busy counter",
		DiscountedPrice: 300,
		QuantityTotal:   3,
	})

	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	resp, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	// Two draws collided, the third was kept as the credential.
	require.Len(t, reservationRepo.pinChecks, 3)
	require.Equal(t, resp.PickupPin, reservationRepo.pinChecks[2])

	reservation, err := repository.NewReservationRepository().GetByID(ctx, resp.ReservationID)
	require.NoError(t, err)
	require.Equal(t, resp.PickupPin, reservation.PickupPin)
}

func Test_reservationDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:         "Free veggie box",
		QuantityTotal: 4,
		IsFree:        true,
	})

	ctxBeneficiary := testutil.MockContextWithUserID(ctx, testutil.Beneficiary1.ID)
	reserveResp, err := reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 2,
	})
	require.NoError(t, err)

	// Another user cannot cancel it.
	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	_, err = reservationDomain.Cancel(ctxCustomer, &model.CancelReservationRequest{
		ReservationID: reserveResp.ReservationID,
	})
	require.Equal(t, "Permission denied", err.Error())

	// The owner can; the stock is released.
	_, err = reservationDomain.Cancel(ctxBeneficiary, &model.CancelReservationRequest{
		ReservationID: reserveResp.ReservationID,
	})
	require.NoError(t, err)

	updatedLot, err := repository.NewLotRepository().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 0, updatedLot.QuantityReserved)
	require.Equal(t, entity.LotAvailable, updatedLot.Status)

	// Cancelling again fails.
	_, err = reservationDomain.Cancel(ctxBeneficiary, &model.CancelReservationRequest{
		ReservationID: reserveResp.ReservationID,
	})
	require.Equal(t, "This reservation is already finalized", err.Error())

	// The cancellation did not refund the daily slot: one more free reservation
	// is allowed today, not two.
	_, err = reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	_, err = reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 1,
	})
	require.Equal(t, "You reached your daily limit of 2 free reservations", err.Error())
}

func Test_reservationDomain_Reserve_DonationRequiresFreeLot(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:           "Paid basket",
		DiscountedPrice: 700,
		QuantityTotal:   3,
	})

	ctxBeneficiary := testutil.MockContextWithUserID(ctx, testutil.Beneficiary1.ID)
	_, err := reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:      lot.ID,
		Quantity:   1,
		IsDonation: true,
	})
	require.Equal(t, "This lot is not a free donation", err.Error())
}

func Test_reservationDomain_GetMyReservations(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	reservationDomain := newTestReservationDomain()

	lot := insertLot(t, ctx, &entity.Lot{
		Title:           "Mixed pastries",
		DiscountedPrice: 200,
		QuantityTotal:   6,
	})

	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	_, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
		LotID:    lot.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	resp, err := reservationDomain.GetMyReservations(ctxCustomer, &model.GetMyReservationsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	require.Equal(t, lot.ID, resp.Reservations[0].LotID)
	require.Equal(t, "pending", resp.Reservations[0].Status)

	// Another user sees nothing.
	ctxBeneficiary := testutil.MockContextWithUserID(ctx, testutil.Beneficiary1.ID)
	resp, err = reservationDomain.GetMyReservations(ctxBeneficiary, &model.GetMyReservationsRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Reservations)
}
