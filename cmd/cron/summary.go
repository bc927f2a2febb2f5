package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"promobot/internal/datastore"
	"promobot/internal/services"
)

// DailySummaryJob pushes headline numbers to the admin chat once a day.
type DailySummaryJob struct {
	Db  *bun.DB
	Bot *services.Bot
}

func NewDailySummaryJob(db *bun.DB, bot *services.Bot) *DailySummaryJob {
	return &DailySummaryJob{
		Db:  db,
		Bot: bot,
	}
}

func (j *DailySummaryJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, services.CONFIG_CRONJOB_TIME_DAILY_SUMMARY)
	if err != nil {
		fmt.Println(err)
		return
	}

	if timeline == nil || timeline.Value == "" {
		fmt.Println("No timeline found")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.runScheduledTask)
	log.Println("Daily summary Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
}

func (j *DailySummaryJob) runScheduledTask() {
	ctx := context.Background()
	log.Println("Start building daily summary ...")

	chatConfig, err := datastore.GetConfigByKey(ctx, j.Db, services.CONFIG_ADMIN_CHAT_ID)
	if err != nil || chatConfig == nil || chatConfig.Value == "" {
		fmt.Println("No admin chat configured")
		return
	}

	chatID, err := strconv.ParseInt(chatConfig.Value, 10, 64)
	if err != nil {
		fmt.Println("Invalid admin chat id:", chatConfig.Value)
		return
	}

	var users, promos, activations int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = datastore.CountUsers(gctx, j.Db)
		return err
	})
	g.Go(func() error {
		var err error
		promos, err = datastore.CountPromos(gctx, j.Db)
		return err
	})
	g.Go(func() error {
		var err error
		activations, err = datastore.CountActivations(gctx, j.Db)
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Println(err)
		return
	}

	msg := fmt.Sprintf("📊 <b>Daily summary</b>\n\nUsers: %d\nPromos: %d\nActivations: %d", users, promos, activations)
	if err := j.Bot.SendMsg(chatID, msg); err != nil {
		fmt.Println("error sending summary:", err)
		return
	}

	log.Println("Daily summary sent")
}
