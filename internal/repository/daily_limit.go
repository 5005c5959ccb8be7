package repository

import (
	"context"
	"errors"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BeneficiaryDailyLimitRepository interface {
	Get(ctx context.Context, beneficiaryID, date string) (*entity.BeneficiaryDailyLimit, error)

	// CheckAndIncrement atomically consumes one daily slot. It returns
	// gorm.ErrRecordNotFound when the beneficiary is already at the cap.
	CheckAndIncrement(ctx context.Context, beneficiaryID, date string, max int) error
}

type beneficiaryDailyLimitRepository struct{}

func NewBeneficiaryDailyLimitRepository() *beneficiaryDailyLimitRepository {
	return &beneficiaryDailyLimitRepository{}
}

func (r *beneficiaryDailyLimitRepository) Get(
	ctx context.Context, beneficiaryID, date string,
) (*entity.BeneficiaryDailyLimit, error) {
	var result entity.BeneficiaryDailyLimit
	err := xcontext.DB(ctx).
		Take(&result, "beneficiary_id=? AND date=?", beneficiaryID, date).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CheckAndIncrement never does a read-then-compare: the increment is a single
// guarded UPDATE, so two concurrent requests observing count = max-1 cannot
// both get through. The insert path covers the first reservation of the day;
// losing the insert race falls back to the guarded UPDATE once.
func (r *beneficiaryDailyLimitRepository) CheckAndIncrement(
	ctx context.Context, beneficiaryID, date string, max int,
) error {
	if max <= 0 {
		return gorm.ErrRecordNotFound
	}

	tx := r.increment(ctx, beneficiaryID, date, max)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 0 {
		return nil
	}

	// Zero rows: the row is either at the cap or does not exist yet.
	err := xcontext.DB(ctx).
		Take(&entity.BeneficiaryDailyLimit{}, "beneficiary_id=? AND date=?", beneficiaryID, date).Error
	if err == nil {
		return gorm.ErrRecordNotFound
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = xcontext.DB(ctx).Create(&entity.BeneficiaryDailyLimit{
		BeneficiaryID:    beneficiaryID,
		Date:             date,
		ReservationCount: 1,
	}).Error
	if err == nil {
		return nil
	}

	// The insert collided with a concurrent first reservation; retry the
	// guarded UPDATE against the row that now exists.
	tx = r.increment(ctx, beneficiaryID, date, max)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *beneficiaryDailyLimitRepository) increment(
	ctx context.Context, beneficiaryID, date string, max int,
) *gorm.DB {
	return xcontext.DB(ctx).Model(&entity.BeneficiaryDailyLimit{}).
		Where("beneficiary_id=? AND date=? AND reservation_count < ?", beneficiaryID, date, max).
		Update("reservation_count", gorm.Expr("reservation_count+?", 1))
}
