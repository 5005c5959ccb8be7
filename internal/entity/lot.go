package entity

import (
	"time"

	"github.com/ecopanier/backend/pkg/enum"
)

type LotStatus string

var (
	LotAvailable = enum.New(LotStatus("available"))
	LotReserved  = enum.New(LotStatus("reserved"))
	LotSoldOut   = enum.New(LotStatus("sold_out"))
	LotExpired   = enum.New(LotStatus("expired"))
)

// Lot is a merchant-listed batch of surplus food. The quantity counters are
// only mutated through guarded updates in the lot repository; at all times
// QuantityReserved + QuantitySold <= QuantityTotal.
type Lot struct {
	Base

	MerchantID string `gorm:"index"`
	Merchant   User   `gorm:"foreignKey:MerchantID"`

	Title    string
	Category string

	// Prices in cents. A free lot has DiscountedPrice 0.
	OriginalPrice   int64
	DiscountedPrice int64

	QuantityTotal    int
	QuantityReserved int
	QuantitySold     int

	PickupStart time.Time
	PickupEnd   time.Time `gorm:"index"`

	IsFree bool
	Status LotStatus `gorm:"index"`

	RequiresColdChain bool
	IsUrgent          bool

	ImageURLs Array[string]
}

func (l *Lot) Remainder() int {
	return l.QuantityTotal - l.QuantityReserved - l.QuantitySold
}
