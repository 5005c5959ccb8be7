package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/pkg/testutil"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createLot(t *testing.T, ctx context.Context, quantity int) *entity.Lot {
	t.Helper()

	lot := &entity.Lot{
		Base:            entity.Base{ID: uuid.NewString()},
		MerchantID:      "merchant1",
		Title:           "Surplus basket",
		DiscountedPrice: 500,
		QuantityTotal:   quantity,
		PickupStart:     time.Now().Add(time.Hour),
		PickupEnd:       time.Now().Add(3 * time.Hour),
		Status:          entity.LotAvailable,
	}

	require.NoError(t, NewLotRepository().Create(ctx, lot))
	return lot
}

func Test_lotRepository_CheckAndReserve_ExhaustsExactly(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()
	lot := createLot(t, ctx, 3)

	// Five single-unit attempts against three units: exactly three succeed.
	succeeded := 0
	for i := 0; i < 5; i++ {
		err := repo.CheckAndReserve(ctx, lot.ID, 1)
		if err == nil {
			succeeded++
		} else {
			require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		}
	}
	require.Equal(t, 3, succeeded)

	updated, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 3, updated.QuantityReserved)
	require.Equal(t, 0, updated.Remainder())
	require.Equal(t, entity.LotSoldOut, updated.Status)
}

func Test_lotRepository_CheckAndReserve_RejectsOversizedRequest(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()
	lot := createLot(t, ctx, 3)

	require.NoError(t, repo.CheckAndReserve(ctx, lot.ID, 2))

	// Remainder is 1, a request for 2 is refused wholesale.
	err := repo.CheckAndReserve(ctx, lot.ID, 2)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	updated, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updated.QuantityReserved)
}

func Test_lotRepository_FulfillAndRelease(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()
	lot := createLot(t, ctx, 4)

	require.NoError(t, repo.CheckAndReserve(ctx, lot.ID, 3))

	require.NoError(t, repo.Fulfill(ctx, lot.ID, 2))
	updated, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.QuantityReserved)
	require.Equal(t, 2, updated.QuantitySold)
	require.Equal(t, entity.LotReserved, updated.Status)

	// Fulfilling more than is reserved is refused.
	err = repo.Fulfill(ctx, lot.ID, 2)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.Release(ctx, lot.ID, 1))
	updated, err = repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 0, updated.QuantityReserved)
	require.Equal(t, entity.LotAvailable, updated.Status)

	// Releasing with nothing reserved floors at zero instead of going negative.
	require.NoError(t, repo.Release(ctx, lot.ID, 5))
	updated, err = repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.Equal(t, 0, updated.QuantityReserved)
}

func Test_lotRepository_CheckAndConvertToFree_ExactlyOnce(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()
	lot := createLot(t, ctx, 2)

	start := time.Now()
	end := start.AddDate(0, 0, 1)
	require.NoError(t, repo.CheckAndConvertToFree(ctx, lot.ID, start, end))

	updated, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	require.True(t, updated.IsFree)
	require.Equal(t, int64(0), updated.DiscountedPrice)

	// The second conversion hits the is_free guard.
	err = repo.CheckAndConvertToFree(ctx, lot.ID, start, end)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func Test_lotRepository_CheckAndDelete_RecencyGuard(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()
	lot := createLot(t, ctx, 2)

	// The lot's pickup window is not behind the cutoff, so nothing is deleted.
	err := repo.CheckAndDelete(ctx, lot.ID, time.Now().Add(-24*time.Hour))
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)

	require.NoError(t, repo.CheckAndDelete(ctx, lot.ID, time.Now().Add(4*time.Hour)))

	_, err = repo.GetByID(ctx, lot.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func Test_lotRepository_GetAvailableList(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotRepository()

	open := createLot(t, ctx, 2)

	closed := createLot(t, ctx, 2)
	require.NoError(t, xcontext.DB(ctx).Model(closed).
		Update("pickup_end", time.Now().Add(-time.Hour)).Error)

	soldOut := createLot(t, ctx, 2)
	require.NoError(t, repo.CheckAndReserve(ctx, soldOut.ID, 2))

	lots, err := repo.GetAvailableList(ctx, GetLotListFilter{})
	require.NoError(t, err)
	require.Len(t, lots, 1)
	require.Equal(t, open.ID, lots[0].ID)
}
