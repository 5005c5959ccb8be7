// Package lotledger holds the pure quantity arithmetic of a lot. Every
// function is an intent over a snapshot: the authoritative application happens
// in the repository as a single guarded UPDATE, mirroring the rules here.
package lotledger

import (
	"errors"

	"github.com/ecopanier/backend/internal/entity"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type Snapshot struct {
	Total    int
	Reserved int
	Sold     int
}

func Of(lot *entity.Lot) Snapshot {
	return Snapshot{
		Total:    lot.QuantityTotal,
		Reserved: lot.QuantityReserved,
		Sold:     lot.QuantitySold,
	}
}

func (s Snapshot) Remainder() int {
	return s.Total - s.Reserved - s.Sold
}

// Status derives the lot status from the counters: no remainder means
// sold_out, outstanding reservations mean reserved, otherwise available.
func (s Snapshot) Status() entity.LotStatus {
	switch {
	case s.Remainder() <= 0:
		return entity.LotSoldOut
	case s.Reserved > 0:
		return entity.LotReserved
	default:
		return entity.LotAvailable
	}
}

// Reserve moves q units from the remainder into the reserved counter.
func Reserve(s Snapshot, q int) (Snapshot, error) {
	if q > s.Remainder() {
		return s, ErrInsufficientStock
	}

	s.Reserved += q
	return s, nil
}

// Release returns q reserved units to the remainder, flooring at zero.
func Release(s Snapshot, q int) Snapshot {
	if q > s.Reserved {
		q = s.Reserved
	}

	s.Reserved -= q
	return s
}

// Fulfill converts q reserved units into sold units.
func Fulfill(s Snapshot, q int) (Snapshot, error) {
	if q > s.Reserved {
		return s, ErrInsufficientStock
	}

	s.Reserved -= q
	s.Sold += q
	return s, nil
}
