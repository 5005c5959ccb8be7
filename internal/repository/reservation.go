package repository

import (
	"context"
	"time"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, reservationID string) (*entity.Reservation, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Reservation, error)
	CountActivePin(ctx context.Context, lotID, pin string) (int64, error)

	// CheckAndComplete and CheckAndCancel transition a reservation out of its
	// active state with a status guard; a zero-row update means the
	// reservation was already finalized.
	CheckAndComplete(ctx context.Context, reservationID string, completedAt time.Time) error
	CheckAndCancel(ctx context.Context, reservationID string) error

	SetGraceUntil(ctx context.Context, reservationID string, until time.Time) error
	CancelAllActiveByLotID(ctx context.Context, lotID string) (int64, error)
}

type reservationRepository struct{}

func NewReservationRepository() *reservationRepository {
	return &reservationRepository{}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	return xcontext.DB(ctx).Create(reservation).Error
}

func (r *reservationRepository) GetByID(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	var result entity.Reservation
	if err := xcontext.DB(ctx).Take(&result, "id=?", reservationID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *reservationRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Reservation, error) {
	var result []entity.Reservation
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *reservationRepository) CountActivePin(ctx context.Context, lotID, pin string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Reservation{}).
		Where("lot_id=? AND pickup_pin=? AND status IN (?)",
			lotID, pin, entity.ActiveReservationStatuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *reservationRepository) CheckAndComplete(
	ctx context.Context, reservationID string, completedAt time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Reservation{}).
		Where("id=? AND status IN (?)", reservationID, entity.ActiveReservationStatuses).
		Updates(map[string]any{
			"status":       entity.ReservationCompleted,
			"completed_at": completedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *reservationRepository) CheckAndCancel(ctx context.Context, reservationID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Reservation{}).
		Where("id=? AND status IN (?)", reservationID, entity.ActiveReservationStatuses).
		Update("status", entity.ReservationCancelled)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *reservationRepository) SetGraceUntil(
	ctx context.Context, reservationID string, until time.Time,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Reservation{}).
		Where("id=? AND status IN (?)", reservationID, entity.ActiveReservationStatuses).
		Update("pickup_grace_until", until)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CancelAllActiveByLotID bulk-cancels every active reservation of a lot. Used
// by the cleanup sweep right before the lot row is deleted; quantity
// reconciliation is skipped on purpose since the lot is going away.
func (r *reservationRepository) CancelAllActiveByLotID(ctx context.Context, lotID string) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.Reservation{}).
		Where("lot_id=? AND status IN (?)", lotID, entity.ActiveReservationStatuses).
		Update("status", entity.ReservationCancelled)
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
