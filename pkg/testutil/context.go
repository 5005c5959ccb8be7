package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopanier/backend/config"
	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/pkg/authenticator"
	"github.com/ecopanier/backend/pkg/logger"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/google/uuid"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	// Each context gets its own named in-memory database. Shared cache keeps it
	// alive across the extra connections gorm opens for transactions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     "secret",
				Expiration: time.Minute,
			},
		},
		Lot: config.LotConfigs{
			MaxDailyBeneficiaryReservations: 2,
			PickupPinLength:                 6,
			FreeConversionLookahead:         2 * time.Hour,
			UnclaimedRetention:              24 * time.Hour,
			AbsenceGracePeriod:              30 * time.Minute,
			ConversionInterval:              15 * time.Minute,
			CleanupInterval:                 time.Hour,
			ImageBucket:                     "lot-images",
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithTokenEngine(ctx,
		authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.AccessToken))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
