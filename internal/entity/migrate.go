package entity

import (
	"context"

	"github.com/ecopanier/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Lot{},
		&Reservation{},
		&BeneficiaryDailyLimit{},
	)
}
