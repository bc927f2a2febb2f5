package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"

	"promobot/internal/datastore"
	"promobot/internal/pkg/caching"
	"promobot/internal/services"
)

// ExpirySweepJob flips promos past their expiry date to inactive so the
// claim list and the admin panel stop offering them.
type ExpirySweepJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewExpirySweepJob(redis redis.UniversalClient, db *bun.DB) *ExpirySweepJob {
	return &ExpirySweepJob{
		Redis: redis,
		Db:    db,
	}
}

func (j *ExpirySweepJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, services.CONFIG_CRONJOB_TIME_EXPIRY_SWEEP)
	if err != nil {
		fmt.Println(err)
		return
	}

	if timeline == nil || timeline.Value == "" {
		fmt.Println("No timeline found")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.runScheduledTask)
	log.Println("Expiry sweep Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
	j.runScheduledTask()
}

func (j *ExpirySweepJob) runScheduledTask() {
	ctx := context.Background()
	log.Println("Start sweeping expired promos ...")

	n, err := datastore.DeactivateExpiredPromos(ctx, j.Db, time.Now())
	if err != nil {
		fmt.Println(err)
		return
	}

	if n > 0 {
		cache, err := caching.NewCacheRedis(j.Redis, false)
		if err == nil {
			//nolint:errcheck
			cache.Delete(ctx, services.DBKeyAvailablePromos())
		}
	}

	log.Println("Expired promos deactivated:", n)
}
