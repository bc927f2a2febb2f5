package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"

	"promobot/internal/datastore/redis_store"
	"promobot/internal/models"
)

// ServiceDialog keeps multi-step wizard progress in Redis keyed by user, so
// a bot restart drops no one mid-conversation.
type ServiceDialog struct {
	container *do.Injector
	redisDB   redis.UniversalClient
}

func NewServiceDialog(container *do.Injector) (*ServiceDialog, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	return &ServiceDialog{container, db}, nil
}

func (service *ServiceDialog) Current(ctx context.Context, userID int64) (*models.DialogState, error) {
	return redis_store.GetDialogState(ctx, service.redisDB, userID)
}

func (service *ServiceDialog) Begin(ctx context.Context, userID int64, flow string) (*models.DialogState, error) {
	state := &models.DialogState{
		Flow:      flow,
		Step:      0,
		StartedAt: time.Now(),
	}
	return redis_store.SaveDialogState(ctx, service.redisDB, userID, state)
}

func (service *ServiceDialog) Save(ctx context.Context, userID int64, state *models.DialogState) (*models.DialogState, error) {
	return redis_store.SaveDialogState(ctx, service.redisDB, userID, state)
}

func (service *ServiceDialog) End(ctx context.Context, userID int64) error {
	return redis_store.ClearDialogState(ctx, service.redisDB, userID)
}
