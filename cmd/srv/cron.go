package main

import (
	"github.com/ecopanier/backend/internal/domain/cron"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadStorage()
	s.loadRedisClient()
	s.loadRepos()
	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewExpiringLotCronJob(s.ctx, s.sweepDomain),
		cron.NewUnclaimedLotCronJob(s.ctx, s.sweepDomain),
	)

	return nil
}
