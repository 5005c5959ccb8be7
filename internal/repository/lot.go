package repository

import (
	"context"
	"time"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetLotListFilter struct {
	FreeOnly   bool
	MerchantID string
	Offset     int
	Limit      int
}

type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, lotID string) (*entity.Lot, error)
	GetAvailableList(ctx context.Context, filter GetLotListFilter) ([]entity.Lot, error)

	// CheckAndReserve, Release, and Fulfill mutate the quantity counters with
	// a guarded UPDATE, then re-derive the status from the counters. Callers
	// must wrap them in a transaction together with the reservation mutation.
	CheckAndReserve(ctx context.Context, lotID string, quantity int) error
	Release(ctx context.Context, lotID string, quantity int) error
	Fulfill(ctx context.Context, lotID string, quantity int) error

	CheckAndConvertToFree(ctx context.Context, lotID string, pickupStart, pickupEnd time.Time) error
	ReschedulePickup(ctx context.Context, lotID string, pickupStart, pickupEnd time.Time) error
	GetExpiringLots(ctx context.Context, now time.Time, lookahead time.Duration) ([]entity.Lot, error)
	GetUnclaimedLots(ctx context.Context, before time.Time) ([]entity.Lot, error)
	CheckAndDelete(ctx context.Context, lotID string, before time.Time) error
}

type lotRepository struct{}

func NewLotRepository() *lotRepository {
	return &lotRepository{}
}

func (r *lotRepository) Create(ctx context.Context, lot *entity.Lot) error {
	return xcontext.DB(ctx).Create(lot).Error
}

func (r *lotRepository) GetByID(ctx context.Context, lotID string) (*entity.Lot, error) {
	var result entity.Lot
	if err := xcontext.DB(ctx).Take(&result, "id=?", lotID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotRepository) GetAvailableList(ctx context.Context, filter GetLotListFilter) ([]entity.Lot, error) {
	tx := xcontext.DB(ctx).
		Where("status IN (?)", []entity.LotStatus{entity.LotAvailable, entity.LotReserved}).
		Where("pickup_end > ?", time.Now())

	if filter.FreeOnly {
		tx = tx.Where("is_free=?", true)
	}

	if filter.MerchantID != "" {
		tx = tx.Where("merchant_id=?", filter.MerchantID)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Lot
	if err := tx.Order("pickup_end ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CheckAndReserve adds quantity to quantity_reserved only if the remainder
// covers it. A zero-row update means the lot is gone, expired, or short on
// stock; all of them surface as gorm.ErrRecordNotFound.
func (r *lotRepository) CheckAndReserve(ctx context.Context, lotID string, quantity int) error {
	tx := xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=? AND status <> ? AND quantity_total - quantity_reserved - quantity_sold >= ?",
			lotID, entity.LotExpired, quantity).
		Update("quantity_reserved", gorm.Expr("quantity_reserved+?", quantity))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.refreshStatus(ctx, lotID)
}

func (r *lotRepository) Release(ctx context.Context, lotID string, quantity int) error {
	tx := xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=?", lotID).
		Update("quantity_reserved", gorm.Expr(
			"CASE WHEN quantity_reserved >= ? THEN quantity_reserved - ? ELSE 0 END",
			quantity, quantity))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.refreshStatus(ctx, lotID)
}

func (r *lotRepository) Fulfill(ctx context.Context, lotID string, quantity int) error {
	tx := xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=? AND quantity_reserved >= ?", lotID, quantity).
		Updates(map[string]any{
			"quantity_reserved": gorm.Expr("quantity_reserved-?", quantity),
			"quantity_sold":     gorm.Expr("quantity_sold+?", quantity),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.refreshStatus(ctx, lotID)
}

// refreshStatus re-derives the status from the counters. It runs in the same
// transaction as the counter update, so the pair is atomic to other sessions.
func (r *lotRepository) refreshStatus(ctx context.Context, lotID string) error {
	return xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=? AND status <> ?", lotID, entity.LotExpired).
		Update("status", gorm.Expr(
			"CASE WHEN quantity_total - quantity_reserved - quantity_sold <= 0 THEN ? "+
				"WHEN quantity_reserved > 0 THEN ? ELSE ? END",
			entity.LotSoldOut, entity.LotReserved, entity.LotAvailable)).Error
}

// CheckAndConvertToFree turns a paid lot into a free donation rescheduled to
// the given pickup window. The is_free guard makes the conversion exactly-once:
// re-running it on an already-free lot affects zero rows.
func (r *lotRepository) CheckAndConvertToFree(
	ctx context.Context, lotID string, pickupStart, pickupEnd time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=? AND is_free=? AND status <> ?", lotID, false, entity.LotExpired).
		Updates(map[string]any{
			"is_free":          true,
			"discounted_price": 0,
			"pickup_start":     pickupStart,
			"pickup_end":       pickupEnd,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ReschedulePickup reopens the pickup window of a lot whose conversion guard
// no longer fires, so reassigned stock on an already-free lot becomes visible
// to the available-lot listing again.
func (r *lotRepository) ReschedulePickup(
	ctx context.Context, lotID string, pickupStart, pickupEnd time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Lot{}).
		Where("id=? AND status <> ?", lotID, entity.LotExpired).
		Updates(map[string]any{
			"pickup_start": pickupStart,
			"pickup_end":   pickupEnd,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotRepository) GetExpiringLots(
	ctx context.Context, now time.Time, lookahead time.Duration,
) ([]entity.Lot, error) {
	var result []entity.Lot
	err := xcontext.DB(ctx).
		Where("status IN (?)", []entity.LotStatus{entity.LotAvailable, entity.LotReserved}).
		Where("is_free=?", false).
		Where("pickup_end > ? AND pickup_end <= ?", now, now.Add(lookahead)).
		Where("quantity_total - quantity_reserved - quantity_sold > 0").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotRepository) GetUnclaimedLots(ctx context.Context, before time.Time) ([]entity.Lot, error) {
	var result []entity.Lot
	err := xcontext.DB(ctx).
		Where("status IN (?)", []entity.LotStatus{entity.LotAvailable, entity.LotReserved}).
		Where("pickup_end < ?", before).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CheckAndDelete removes the lot row, guarded by the same recency condition
// the scan used, so a lot touched since the scan is left alone.
func (r *lotRepository) CheckAndDelete(ctx context.Context, lotID string, before time.Time) error {
	tx := xcontext.DB(ctx).
		Where("id=? AND pickup_end < ?", lotID, before).
		Delete(&entity.Lot{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
