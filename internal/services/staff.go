package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"promobot/internal/datastore"
	"promobot/internal/models"
	"promobot/internal/pkg/caching"
)

type ServiceStaff struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	postgresDB *bun.DB
	cache      caching.Cache
}

func NewServiceStaff(container *do.Injector) (*ServiceStaff, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceStaff{container, db, postgresDB, cache}, nil
}

func (service *ServiceStaff) FindStaffByID(ctx context.Context, staffID int64) (*models.Staff, error) {
	callback := func() (*models.Staff, error) {
		return datastore.FindStaffByID(ctx, service.postgresDB, staffID)
	}
	staff, err := caching.UseCache(ctx, service.cache, DBKeyStaff(staffID), CACHE_TTL_1_MIN, callback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(ErrStaffNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return staff, nil
}

// RequireActiveStaff returns the roster entry or ErrUnauthorized when the
// entry is missing or deactivated.
func (service *ServiceStaff) RequireActiveStaff(ctx context.Context, userID int64) (*models.Staff, error) {
	staff, err := service.FindStaffByID(ctx, userID)
	if errors.Is(err, ErrStaffNotFound) {
		return nil, errorx.Wrap(ErrUnauthorized, errorx.Authn)
	}
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, errorx.Wrap(ErrUnauthorized, errorx.Authn)
	}
	return staff, nil
}

// IsAdmin and IsSeller gate every staff surface. A deactivated entry fails
// the check without being removed from the roster.
func (service *ServiceStaff) IsAdmin(ctx context.Context, userID int64) bool {
	staff, err := service.FindStaffByID(ctx, userID)
	if err != nil {
		return false
	}
	return staff.IsActive && staff.Role == models.RoleAdmin
}

func (service *ServiceStaff) IsSeller(ctx context.Context, userID int64) bool {
	staff, err := service.FindStaffByID(ctx, userID)
	if err != nil {
		return false
	}
	return staff.IsActive && staff.Role == models.RoleSeller
}

// AddStaff registers a roster entry by Telegram id. Re-adding a deactivated
// id reactivates it. The profile fields come from the caller, either a chat
// lookup or the wizard's typed-in names.
func (service *ServiceStaff) AddStaff(ctx context.Context, addedBy int64, targetID int64, role string, firstName string, lastName string, username string) (*models.Staff, error) {
	if role != models.RoleAdmin && role != models.RoleSeller {
		return nil, errorx.Wrap(errors.New("unknown role"), errorx.Validation)
	}
	if err := GuardSelfModify(addedBy, targetID); err != nil {
		return nil, err
	}

	staff := &models.Staff{
		ID:        targetID,
		FirstName: firstName,
		LastName:  lastName,
		Username:  strings.ToLower(username),
		Role:      role,
		IsActive:  true,
		AddedBy:   &addedBy,
		AddedAt:   time.Now(),
	}

	staff, err := datastore.CreateStaff(ctx, service.postgresDB, staff)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyStaff(targetID))

	return staff, nil
}

func (service *ServiceStaff) ToggleStaff(ctx context.Context, actorID int64, staffID int64) (*models.Staff, error) {
	if err := GuardSelfModify(actorID, staffID); err != nil {
		return nil, err
	}

	staff, err := service.FindStaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}

	err = datastore.SetStaffActive(ctx, service.postgresDB, staffID, !staff.IsActive)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	staff.IsActive = !staff.IsActive

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyStaff(staffID))

	return staff, nil
}

func (service *ServiceStaff) RemoveStaff(ctx context.Context, actorID int64, staffID int64) error {
	if err := GuardSelfModify(actorID, staffID); err != nil {
		return err
	}

	_, err := service.FindStaffByID(ctx, staffID)
	if err != nil {
		return err
	}

	err = datastore.DeleteStaff(ctx, service.postgresDB, staffID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyStaff(staffID))

	return nil
}

func (service *ServiceStaff) ListStaff(ctx context.Context, role string) ([]*models.Staff, error) {
	return datastore.GetAllStaff(ctx, service.postgresDB, role)
}

// GuardSelfModify keeps an admin from locking themselves out by editing or
// removing their own entry.
func GuardSelfModify(actorID int64, targetID int64) error {
	if actorID == targetID {
		return errorx.Wrap(ErrSelfModify, errorx.Invalid)
	}
	return nil
}
