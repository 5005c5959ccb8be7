package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ecopanier/backend/config"
	"github.com/ecopanier/backend/internal/client"
	"github.com/ecopanier/backend/internal/domain"
	"github.com/ecopanier/backend/internal/model"
	"github.com/ecopanier/backend/internal/repository"
	"github.com/ecopanier/backend/pkg/authenticator"
	"github.com/ecopanier/backend/pkg/logger"
	"github.com/ecopanier/backend/pkg/router"
	"github.com/ecopanier/backend/pkg/storage"
	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/ecopanier/backend/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo        repository.UserRepository
	lotRepo         repository.LotRepository
	reservationRepo repository.ReservationRepository
	dailyLimitRepo  repository.BeneficiaryDailyLimitRepository

	lotDomain         domain.LotDomain
	reservationDomain domain.ReservationDomain
	absenceDomain     domain.AbsenceDomain
	sweepDomain       domain.SweepDomain

	storage     storage.Storage
	redisClient xredis.Client
	notifier    client.Notifier

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	cfg := config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "ecopanier"),
			Password: getEnv("MYSQL_PASSWORD", "ecopanier"),
			Database: getEnv("MYSQL_DATABASE", "ecopanier"),
		},
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
			Cert: getEnv("SERVER_CERT", ""),
			Key:  getEnv("SERVER_KEY", ""),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token_secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     getEnv("TOKEN_SECRET", "token_secret"),
				Expiration: getDuration("ACCESS_TOKEN_DURATION", "24h"),
			},
		},
		Storage: storage.S3Configs{
			Region:         getEnv("STORAGE_REGION", "auto"),
			Endpoint:       getEnv("STORAGE_ENDPOINT", "http://localhost:9000"),
			PublicEndpoint: getEnv("STORAGE_PUBLIC_ENDPOINT", "http://localhost:9000"),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", ""),
			SSLDisabled:    getEnv("STORAGE_SSL_DISABLE", "true") == "true",
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Lot: config.LotConfigs{
			MaxDailyBeneficiaryReservations: getInt("MAX_DAILY_BENEFICIARY_RESERVATIONS", "2"),
			PickupPinLength:                 getInt("PICKUP_PIN_LENGTH", "6"),
			FreeConversionLookahead:         getDuration("FREE_CONVERSION_LOOKAHEAD", "2h"),
			UnclaimedRetention:              getDuration("UNCLAIMED_RETENTION", "24h"),
			AbsenceGracePeriod:              getDuration("ABSENCE_GRACE_PERIOD", "30m"),
			ConversionInterval:              getDuration("CONVERSION_INTERVAL", "15m"),
			CleanupInterval:                 getDuration("CLEANUP_INTERVAL", "1h"),
			ImageBucket:                     getEnv("LOT_IMAGE_BUCKET", "lot-images"),
		},
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       xcontext.Configs(s.ctx).Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadAuthenticator() {
	s.ctx = xcontext.WithTokenEngine(s.ctx,
		authenticator.NewTokenEngine[model.AccessToken](xcontext.Configs(s.ctx).Auth.AccessToken))
}

func (s *srv) loadStorage() {
	s.storage = storage.NewS3Storage(xcontext.Configs(s.ctx).Storage)
}

func (s *srv) loadRedisClient() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
	s.notifier = client.NewRedisNotifier(redisClient)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.lotRepo = repository.NewLotRepository()
	s.reservationRepo = repository.NewReservationRepository()
	s.dailyLimitRepo = repository.NewBeneficiaryDailyLimitRepository()
}

func (s *srv) loadDomains() {
	s.lotDomain = domain.NewLotDomain(s.lotRepo, s.userRepo, s.storage)
	s.reservationDomain = domain.NewReservationDomain(
		s.reservationRepo, s.lotRepo, s.dailyLimitRepo, s.userRepo, s.notifier)
	s.absenceDomain = domain.NewAbsenceDomain(s.reservationRepo, s.lotRepo, s.notifier)
	s.sweepDomain = domain.NewSweepDomain(s.lotRepo, s.reservationRepo, s.storage, s.notifier)
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func getInt(key, def string) int {
	value, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		panic(err)
	}

	return value
}

func getDuration(key, def string) time.Duration {
	value, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		panic(err)
	}

	return value
}
