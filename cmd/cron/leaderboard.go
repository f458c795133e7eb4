package main

import (
	"context"
	"log"
	"time"

	"campuspulse/internal/datastore"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"
	"campuspulse/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

const CONFIG_CRONJOB_TIME_LEADERBOARD = "CRONJOB_TIME_LEADERBOARD"

// LeaderboardJob drops stale cached boards and recomputes every scope/window
// pair so the first request after a refresh never pays the aggregation.
type LeaderboardJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewLeaderboardJob(redis redis.UniversalClient, db *bun.DB) *LeaderboardJob {
	return &LeaderboardJob{
		Redis: redis,
		Db:    db,
	}
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) error {
	configs := datastore.NewPGConfigStore(j.Db)
	timeline, err := configs.GetConfigByKey(context.Background(), CONFIG_CRONJOB_TIME_LEADERBOARD)
	if err != nil || timeline.Value == "" {
		log.Println("No leaderboard schedule found, defaulting to hourly")
		timeline = &models.Config{Value: "@every 1h"}
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.refresh)
	log.Println("Leaderboard cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
	if err != nil {
		return err
	}

	j.refresh()
	return nil
}

func (j *LeaderboardJob) refresh() {
	ctx := context.Background()

	if err := caching.DeleteKeys(ctx, j.Redis, services.PatternLeaderboard()); err != nil {
		log.Println("clear leaderboard cache:", err)
		return
	}

	serviceLeaderboard, err := j.buildService()
	if err != nil {
		log.Println("build leaderboard service:", err)
		return
	}

	for _, scope := range []string{
		models.LEADERBOARD_SCOPE_INDIVIDUAL,
		models.LEADERBOARD_SCOPE_ORGANIZATION,
		models.LEADERBOARD_SCOPE_DORM,
	} {
		for _, window := range []string{
			models.LEADERBOARD_WINDOW_ALL_TIME,
			models.LEADERBOARD_WINDOW_CURRENT_PERIOD,
		} {
			response, err := serviceLeaderboard.Rank(ctx, scope, window, 0)
			if err != nil {
				log.Println("warm leaderboard", scope, window, err)
				continue
			}
			log.Println("warmed leaderboard", scope, window, "snapshot:", response.Snapshot)
		}
	}
}

func (j *LeaderboardJob) buildService() (*services.ServiceLeaderboard, error) {
	cache, err := caching.NewCacheRedis(j.Redis, false)
	if err != nil {
		return nil, err
	}

	ledger := datastore.NewPGLedgerStore(j.Db)
	users := datastore.NewPGUserStore(j.Db)
	configs := datastore.NewPGConfigStore(j.Db)

	serviceConfig, err := services.NewServiceConfig(configs, cache)
	if err != nil {
		return nil, err
	}

	serviceUser, err := services.NewServiceUser(users, ledger, cache)
	if err != nil {
		return nil, err
	}

	return services.NewServiceLeaderboard(ledger, users, cache, serviceUser, serviceConfig)
}
