package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/uptrace/bun"
	tele "gopkg.in/telebot.v3"

	"promobot/internal/datastore"
	"promobot/internal/models"
)

type ServiceUser struct {
	container  *do.Injector
	postgresDB *bun.DB
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB}, nil
}

// FindOrCreateUser upserts the Telegram sender so every later message can
// join against an up-to-date profile.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, sender *tele.User) (*models.User, error) {
	if sender == nil {
		return nil, errors.New("sender is nil")
	}

	now := time.Now()
	user := &models.User{
		ID:        sender.ID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		Username:  strings.ToLower(sender.Username),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return datastore.UpsertUser(ctx, service.postgresDB, user)
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return datastore.FindUserByID(ctx, service.postgresDB, userID)
}

func (service *ServiceUser) CountUsers(ctx context.Context) (int, error) {
	return datastore.CountUsers(ctx, service.postgresDB)
}
