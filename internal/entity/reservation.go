package entity

import (
	"database/sql"

	"github.com/ecopanier/backend/pkg/enum"
)

type ReservationStatus string

var (
	ReservationPending = enum.New(ReservationStatus("pending"))
	// ReservationConfirmed is a legacy pre-pickup label kept for rows imported
	// from older deployments. It is equivalent to pending everywhere.
	ReservationConfirmed = enum.New(ReservationStatus("confirmed"))
	ReservationCompleted = enum.New(ReservationStatus("completed"))
	ReservationCancelled = enum.New(ReservationStatus("cancelled"))
)

// ActiveReservationStatuses are the pre-pickup states whose quantity is still
// counted in the lot's quantity_reserved.
var ActiveReservationStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

// Reservation is a user's claim on some quantity of a lot.
//
// LotID is a plain column, not a gorm association: the cleanup sweep deletes
// lot rows while completed reservations survive as historical records, so a
// completed reservation may reference a lot that no longer exists.
type Reservation struct {
	Base

	LotID string `gorm:"index"`

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Quantity   int
	TotalPrice int64

	// PickupPin is unique among the active reservations of a lot only.
	PickupPin string

	Status     ReservationStatus `gorm:"index"`
	IsDonation bool

	// PickupGraceUntil is set by the "wait" absence resolution. It extends the
	// effective pickup deadline for this reservation without touching the
	// lot's pickup window.
	PickupGraceUntil sql.NullTime

	CompletedAt sql.NullTime
}
