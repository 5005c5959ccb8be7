package main

import (
	"net/http"

	"github.com/ecopanier/backend/internal/entity"
	"github.com/ecopanier/backend/internal/middleware"
	"github.com/ecopanier/backend/pkg/router"
	"github.com/ecopanier/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadAuthenticator()
	s.loadStorage()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)

	// Public API.
	router.GET(s.router, "/lots", s.lotDomain.GetLots)
	router.GET(s.router, "/lots/detail", s.lotDomain.GetLot)

	authRouter := s.router.Group("/")
	authRouter.Use(middleware.Authenticate)
	{
		router.POST(authRouter, "/lots", s.lotDomain.CreateLot)
		router.POST(authRouter, "/lots/upload-image", s.lotDomain.UploadLotImage)

		router.POST(authRouter, "/reservations", s.reservationDomain.Reserve)
		router.GET(authRouter, "/reservations", s.reservationDomain.GetMyReservations)
		router.POST(authRouter, "/reservations/complete", s.reservationDomain.Complete)
		router.POST(authRouter, "/reservations/cancel", s.reservationDomain.Cancel)
		router.POST(authRouter, "/reservations/resolve-absence", s.absenceDomain.ResolveAbsence)

		router.POST(authRouter, "/sweeps/run", s.sweepDomain.RunExpirationSweep)
	}
}
