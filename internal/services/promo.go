package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"promobot/internal/datastore"
	"promobot/internal/models"
	"promobot/internal/pkg/caching"
	"promobot/internal/pkg/promocode"
)

type ServicePromo struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	rs         *redsync.Redsync
	postgresDB *bun.DB
	cache      caching.Cache

	serviceMembership *ServiceMembership
}

func NewServicePromo(container *do.Injector) (*ServicePromo, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	serviceMembership, err := do.Invoke[*ServiceMembership](container)
	if err != nil {
		return nil, err
	}

	return &ServicePromo{container, db, rs, postgresDB, cache, serviceMembership}, nil
}

// ClaimPromo hands the user a fresh single-use code. Checks run in a fixed
// order so the reply always names the first failing condition: duplicate
// claim, membership, existence, active, expiry, limit. The slot itself is
// taken with a conditional increment inside the transaction, so two users
// racing for the last code cannot both win.
func (service *ServicePromo) ClaimPromo(ctx context.Context, user *models.User, promoID int64) (*models.Claim, error) {
	mutex := service.rs.NewMutex(LockKeyUserClaim(user.ID), redsync.WithExpiry(10*time.Second))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrClaimLock, errorx.RateLimiting)
	}
	//nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	_, err := runClaimChecks(claimChecks{
		claimed: func() (bool, error) {
			return datastore.HasClaimed(ctx, service.postgresDB, user.ID, promoID)
		},
		member: func() (bool, error) {
			return service.serviceMembership.IsMember(ctx, user.ID)
		},
		promo: func() (*models.Promo, error) {
			return datastore.FindPromoByID(ctx, service.postgresDB, promoID)
		},
	}, now)
	if err != nil {
		return nil, err
	}

	code, err := promocode.Generate(promocode.DefaultLength)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	claim := &models.Claim{
		UserID:    user.ID,
		PromoID:   promoID,
		Code:      code,
		ClaimedAt: now,
	}

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reserved, err := datastore.ReservePromoSlot(ctx, tx, promoID, now)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}
		if !reserved {
			// lost the race or state changed since the read above; re-read
			// inside the tx to name the right reason
			promo, err := datastore.FindPromoByID(ctx, tx, promoID)
			if errors.Is(err, sql.ErrNoRows) {
				return errorx.Wrap(ErrPromoNotFound, errorx.NotExist)
			}
			if err != nil {
				return errorx.Wrap(err, errorx.Service)
			}
			return reserveFailureErr(promo, now)
		}

		_, err = datastore.CreateClaim(ctx, tx, claim)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyAvailablePromos())
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPromo(promoID))

	return claim, nil
}

func availabilityErr(promo *models.Promo, now time.Time) error {
	if !promo.IsActive {
		return errorx.Wrap(ErrPromoInactive, errorx.Invalid)
	}
	if promo.Expired(now) {
		return errorx.Wrap(ErrPromoExpired, errorx.Invalid)
	}
	if promo.LimitReached() {
		return errorx.Wrap(ErrLimitExhausted, errorx.Invalid)
	}
	return nil
}

// claimChecks supplies the claim preconditions lazily. Each check runs only
// when every earlier one passed, so the reply always names the first failing
// condition and no check fires needlessly.
type claimChecks struct {
	claimed func() (bool, error)
	member  func() (bool, error)
	promo   func() (*models.Promo, error)
}

func runClaimChecks(checks claimChecks, now time.Time) (*models.Promo, error) {
	claimed, err := checks.claimed()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if claimed {
		return nil, errorx.Wrap(ErrAlreadyClaimed, errorx.Invalid)
	}

	member, err := checks.member()
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errorx.Wrap(ErrMembershipRequired, errorx.Authn)
	}

	promo, err := checks.promo()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(ErrPromoNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if err := availabilityErr(promo, now); err != nil {
		return nil, err
	}
	return promo, nil
}

// reserveFailureErr names the reason a slot reservation matched no rows. A
// re-read that still shows the promo as available means a concurrent writer
// moved the state between statements; that must surface as an error, never
// as a success with no claim inserted.
func reserveFailureErr(promo *models.Promo, now time.Time) error {
	if err := availabilityErr(promo, now); err != nil {
		return err
	}
	return errorx.Wrap(ErrClaimConflict, errorx.Service)
}

func (service *ServicePromo) ListAvailable(ctx context.Context) ([]*models.Promo, error) {
	callback := func() ([]*models.Promo, error) {
		return datastore.GetAvailablePromos(ctx, service.postgresDB, time.Now())
	}
	return caching.UseCache(ctx, service.cache, DBKeyAvailablePromos(), CACHE_TTL_15_SECONDS, callback)
}

func (service *ServicePromo) ListAll(ctx context.Context) ([]*models.Promo, error) {
	return datastore.GetAllPromos(ctx, service.postgresDB)
}

func (service *ServicePromo) FindPromoByID(ctx context.Context, promoID int64) (*models.Promo, error) {
	callback := func() (*models.Promo, error) {
		return datastore.FindPromoByID(ctx, service.postgresDB, promoID)
	}
	promo, err := caching.UseCache(ctx, service.cache, DBKeyPromo(promoID), CACHE_TTL_1_MIN, callback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(ErrPromoNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return promo, nil
}

func (service *ServicePromo) UserClaims(ctx context.Context, userID int64) ([]*models.Claim, error) {
	return datastore.GetClaimsByUser(ctx, service.postgresDB, userID)
}

func (service *ServicePromo) CreatePromo(ctx context.Context, name string, description string, totalLimit int, expiresAt time.Time) (*models.Promo, error) {
	if err := ValidatePromoName(name); err != nil {
		return nil, err
	}
	if err := ValidatePromoLimit(totalLimit, 0); err != nil {
		return nil, err
	}
	if err := ValidatePromoExpiry(expiresAt, time.Now()); err != nil {
		return nil, err
	}

	promo := &models.Promo{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		TotalLimit:  totalLimit,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	promo, err := datastore.CreatePromo(ctx, service.postgresDB, promo)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyAvailablePromos())

	return promo, nil
}

// EditPromoName and friends update one field at a time, mirroring the edit
// wizard. Limit edits may not undercut codes already handed out; expiry edits
// follow the same strictly-future rule as creation.
func (service *ServicePromo) EditPromoName(ctx context.Context, promoID int64, name string) (*models.Promo, error) {
	if err := ValidatePromoName(name); err != nil {
		return nil, err
	}
	return service.editPromo(ctx, promoID, func(promo *models.Promo) error {
		promo.Name = strings.TrimSpace(name)
		return nil
	})
}

func (service *ServicePromo) EditPromoDescription(ctx context.Context, promoID int64, description string) (*models.Promo, error) {
	return service.editPromo(ctx, promoID, func(promo *models.Promo) error {
		promo.Description = strings.TrimSpace(description)
		return nil
	})
}

func (service *ServicePromo) EditPromoLimit(ctx context.Context, promoID int64, totalLimit int) (*models.Promo, error) {
	return service.editPromo(ctx, promoID, func(promo *models.Promo) error {
		if err := ValidatePromoLimit(totalLimit, promo.UsedCount); err != nil {
			return err
		}
		promo.TotalLimit = totalLimit
		return nil
	})
}

func (service *ServicePromo) EditPromoExpiry(ctx context.Context, promoID int64, expiresAt time.Time) (*models.Promo, error) {
	if err := ValidatePromoExpiry(expiresAt, time.Now()); err != nil {
		return nil, err
	}
	return service.editPromo(ctx, promoID, func(promo *models.Promo) error {
		promo.ExpiresAt = expiresAt
		return nil
	})
}

func (service *ServicePromo) editPromo(ctx context.Context, promoID int64, mutate func(*models.Promo) error) (*models.Promo, error) {
	promo, err := service.FindPromoByID(ctx, promoID)
	if err != nil {
		return nil, err
	}

	if err := mutate(promo); err != nil {
		return nil, err
	}

	promo, err = datastore.EditPromo(ctx, service.postgresDB, promo)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyAvailablePromos())
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPromo(promoID))

	return promo, nil
}

func (service *ServicePromo) TogglePromo(ctx context.Context, promoID int64) (*models.Promo, error) {
	promo, err := service.FindPromoByID(ctx, promoID)
	if err != nil {
		return nil, err
	}

	err = datastore.SetPromoActive(ctx, service.postgresDB, promoID, !promo.IsActive)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	promo.IsActive = !promo.IsActive

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyAvailablePromos())
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPromo(promoID))

	return promo, nil
}

// DeletePromo removes the promo row only. Claims keep their promo_id as a
// dangling reference and render as removed in user history.
func (service *ServicePromo) DeletePromo(ctx context.Context, promoID int64) error {
	_, err := service.FindPromoByID(ctx, promoID)
	if err != nil {
		return err
	}

	err = datastore.DeletePromo(ctx, service.postgresDB, promoID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyAvailablePromos())
	//nolint:errcheck
	service.cache.Delete(ctx, DBKeyPromo(promoID))

	return nil
}

// DeactivateExpired is the cron sweep: anything past its expiry goes
// inactive so staff lists stop showing it as live.
func (service *ServicePromo) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := datastore.DeactivateExpiredPromos(ctx, service.postgresDB, time.Now())
	if err != nil {
		return 0, err
	}

	if n > 0 {
		//nolint:errcheck
		service.cache.Delete(ctx, DBKeyAvailablePromos())
	}

	return n, nil
}

func ValidatePromoName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errorx.Wrap(errors.New("name must not be empty"), errorx.Validation)
	}
	return nil
}

func ValidatePromoLimit(totalLimit int, usedCount int) error {
	if totalLimit <= 0 {
		return errorx.Wrap(errors.New("limit must be positive"), errorx.Validation)
	}
	if totalLimit < usedCount {
		return errorx.Wrap(ErrLimitBelowUsage, errorx.Validation)
	}
	return nil
}

func ValidatePromoExpiry(expiresAt time.Time, now time.Time) error {
	if !expiresAt.After(now) {
		return errorx.Wrap(errors.New("expiry must be in the future"), errorx.Validation)
	}
	return nil
}
