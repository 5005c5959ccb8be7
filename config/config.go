package config

import (
	"fmt"
	"time"

	"github.com/ecopanier/backend/pkg/storage"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Storage   storage.S3Configs
	Redis     RedisConfigs
	Lot       LotConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

// LotConfigs carries the lifecycle policy of lots and reservations.
type LotConfigs struct {
	// MaxDailyBeneficiaryReservations caps the number of free reservations a
	// beneficiary can open per calendar day.
	MaxDailyBeneficiaryReservations int

	// PickupPinLength is the width of the numeric pickup credential.
	PickupPinLength int

	// FreeConversionLookahead is how long before pickup_end a paid lot with
	// unreserved stock is converted into a free donation.
	FreeConversionLookahead time.Duration

	// UnclaimedRetention is how long after pickup_end an unclaimed lot is kept
	// before the cleanup sweep removes it.
	UnclaimedRetention time.Duration

	// AbsenceGracePeriod is the extra time granted by the "wait" absence
	// resolution.
	AbsenceGracePeriod time.Duration

	ConversionInterval time.Duration
	CleanupInterval    time.Duration

	ImageBucket string
}
