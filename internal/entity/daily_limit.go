package entity

import "time"

// BeneficiaryDailyLimit counts the free reservations a beneficiary opened on
// one calendar day. One row per (beneficiary, day); created lazily on the
// first reservation and incremented atomically by the repository. The count is
// never decremented, cancelling a reservation does not refund the daily slot.
type BeneficiaryDailyLimit struct {
	BeneficiaryID string `gorm:"primaryKey"`
	Date          string `gorm:"primaryKey"`

	ReservationCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}
