package domain

import (
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
)

func convertLot(lot *entity.Lot) model.Lot {
	return model.Lot{
		ID:                lot.ID,
		MerchantID:        lot.MerchantID,
		Title:             lot.Title,
		Category:          lot.Category,
		OriginalPrice:     lot.OriginalPrice,
		DiscountedPrice:   lot.DiscountedPrice,
		QuantityTotal:     lot.QuantityTotal,
		QuantityReserved:  lot.QuantityReserved,
		QuantitySold:      lot.QuantitySold,
		QuantityAvailable: lot.Remainder(),
		PickupStart:       lot.PickupStart,
		PickupEnd:         lot.PickupEnd,
		IsFree:            lot.IsFree,
		Status:            string(lot.Status),
		RequiresColdChain: lot.RequiresColdChain,
		IsUrgent:          lot.IsUrgent,
		ImageURLs:         lot.ImageURLs,
	}
}

func convertReservation(reservation *entity.Reservation) model.Reservation {
	result := model.Reservation{
		ID:         reservation.ID,
		LotID:      reservation.LotID,
		UserID:     reservation.UserID,
		Quantity:   reservation.Quantity,
		TotalPrice: reservation.TotalPrice,
		PickupPin:  reservation.PickupPin,
		Status:     string(reservation.Status),
		IsDonation: reservation.IsDonation,
		CreatedAt:  reservation.CreatedAt,
	}

	if reservation.CompletedAt.Valid {
		completedAt := reservation.CompletedAt.Time
		result.CompletedAt = &completedAt
	}

	return result
}
