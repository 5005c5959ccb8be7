package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSweepDomain(storage *testutil.MockStorage) *sweepDomain {
	return NewSweepDomain(
		repository.NewLotRepository(),
		repository.NewReservationRepository(),
		storage,
		client.NewRedisNotifier(&testutil.MockRedisClient{}),
	)
}

func Test_sweepDomain_ConvertExpiringLots(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sweepDomain := newTestSweepDomain(&testutil.MockStorage{})

	// Paid, closing within the lookahead, with stock left: converted.
	expiring := insertLot(t, ctx, &entity.Lot{
		Title:           "Closing soon",
		DiscountedPrice: 800,
		QuantityTotal:   4,
		PickupStart:     time.Now().Add(-2 * time.Hour),
		PickupEnd:       time.Now().Add(time.Hour),
	})

	// Closing far in the future: untouched.
	distant := insertLot(t, ctx, &entity.Lot{
		Title:           "Tomorrow",
		DiscountedPrice: 800,
		QuantityTotal:   4,
		PickupEnd:       time.Now().Add(48 * time.Hour),
	})

	// Already free: untouched.
	free := insertLot(t, ctx, &entity.Lot{
		Title:         "Already free",
		QuantityTotal: 4,
		IsFree:        true,
		PickupStart:   time.Now().Add(-2 * time.Hour),
		PickupEnd:     time.Now().Add(time.Hour),
	})

	converted, err := sweepDomain.ConvertExpiringLots(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, converted)

	updated, err := repository.NewLotRepository().GetByID(ctx, expiring.ID)
	require.NoError(t, err)
	require.True(t, updated.IsFree)
	require.Equal(t, int64(0), updated.DiscountedPrice)
	require.True(t, updated.PickupEnd.After(time.Now().Add(23*time.Hour)))

	updated, err = repository.NewLotRepository().GetByID(ctx, distant.ID)
	require.NoError(t, err)
	require.False(t, updated.IsFree)

	updated, err = repository.NewLotRepository().GetByID(ctx, free.ID)
	require.NoError(t, err)
	require.Equal(t, free.PickupEnd.Unix(), updated.PickupEnd.Unix())

	// A second run finds nothing: the converted lot now has a one-day window.
	converted, err = sweepDomain.ConvertExpiringLots(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, converted)
}

func Test_sweepDomain_CleanupUnclaimedLots(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	mockStorage := &testutil.MockStorage{}
	sweepDomain := newTestSweepDomain(mockStorage)
	reservationDomain := newTestReservationDomain()

	// Past the 24h retention, carrying two pending reservations and a completed
	// pickup.
	stale := insertLot(t, ctx, &entity.Lot{
		Title:           "Forgotten basket",
		DiscountedPrice: 500,
		QuantityTotal:   5,
		PickupStart:     time.Now().Add(-30 * time.Hour),
		PickupEnd:       time.Now().Add(-25 * time.Hour),
		ImageURLs:       []string{"http://cdn.local/lot-images/forgotten.jpg"},
	})

	ctxCustomer := testutil.MockContextWithUserID(ctx, testutil.Customer1.ID)
	pending1, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
		LotID:    stale.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	ctxBeneficiary := testutil.MockContextWithUserID(ctx, testutil.Beneficiary1.ID)
	pending2, err := reservationDomain.Reserve(ctxBeneficiary, &model.ReserveLotRequest{
		LotID:    stale.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	completed, err := reservationDomain.Reserve(ctxCustomer, &model.ReserveLotRequest{
		LotID:    stale.ID,
		Quantity: 1,
	})
	require.NoError(t, err)
	_, err = reservationDomain.Complete(ctx, &model.CompleteReservationRequest{
		ReservationID: completed.ReservationID,
		PickupPin:     completed.PickupPin,
	})
	require.NoError(t, err)

	// Recently closed: kept.
	recent := insertLot(t, ctx, &entity.Lot{
		Title:           "Just closed",
		DiscountedPrice: 500,
		QuantityTotal:   5,
		PickupStart:     time.Now().Add(-3 * time.Hour),
		PickupEnd:       time.Now().Add(-time.Hour),
	})

	deleted, cancelled, err := sweepDomain.CleanupUnclaimedLots(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
	require.Equal(t, 2, cancelled)

	_, err = repository.NewLotRepository().GetByID(ctx, stale.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repository.NewLotRepository().GetByID(ctx, recent.ID)
	require.NoError(t, err)

	// Active reservations were cancelled, the completed one survives as a
	// historical record pointing at the deleted lot.
	for _, id := range []string{pending1.ReservationID, pending2.ReservationID} {
		reservation, err := repository.NewReservationRepository().GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, entity.ReservationCancelled, reservation.Status)
	}

	reservation, err := repository.NewReservationRepository().GetByID(ctx, completed.ReservationID)
	require.NoError(t, err)
	require.Equal(t, entity.ReservationCompleted, reservation.Status)
	require.Equal(t, stale.ID, reservation.LotID)

	require.Equal(t, []string{"forgotten.jpg"}, mockStorage.DeletedObjects)

	// The sweep is idempotent.
	deleted, cancelled, err = sweepDomain.CleanupUnclaimedLots(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)
	require.Equal(t, 0, cancelled)
}

func Test_sweepDomain_CleanupUnclaimedLots_StorageFailure(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sweepDomain := newTestSweepDomain(&testutil.MockStorage{FailDelete: true})

	stale := insertLot(t, ctx, &entity.Lot{
		Title:           "With images",
		DiscountedPrice: 300,
		QuantityTotal:   2,
		PickupStart:     time.Now().Add(-48 * time.Hour),
		PickupEnd:       time.Now().Add(-30 * time.Hour),
		ImageURLs:       []string{"http://cdn.local/lot-images/a.jpg", "http://cdn.local/lot-images/b.jpg"},
	})

	// A broken storage backend does not block the database cleanup.
	deleted, _, err := sweepDomain.CleanupUnclaimedLots(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = repository.NewLotRepository().GetByID(ctx, stale.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func Test_sweepDomain_RunExpirationSweep(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	sweepDomain := newTestSweepDomain(&testutil.MockStorage{})

	insertLot(t, ctx, &entity.Lot{
		Title:           "Closing soon",
		DiscountedPrice: 400,
		QuantityTotal:   3,
		PickupStart:     time.Now().Add(-time.Hour),
		PickupEnd:       time.Now().Add(30 * time.Minute),
	})

	insertLot(t, ctx, &entity.Lot{
		Title:           "Long gone",
		DiscountedPrice: 400,
		QuantityTotal:   3,
		PickupStart:     time.Now().Add(-50 * time.Hour),
		PickupEnd:       time.Now().Add(-26 * time.Hour),
	})

	resp, err := sweepDomain.RunExpirationSweep(ctx, &model.RunExpirationSweepRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.ConvertedCount)
	require.Equal(t, 1, resp.DeletedLots)
	require.Equal(t, 0, resp.CancelledReservations)
}
