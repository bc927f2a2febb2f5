package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"promobot/internal/datastore"
	"promobot/internal/models"
)

// RedemptionResult carries everything the reply needs: the code's claim, the
// promo it came from and the holder, resolved once inside the transaction.
type RedemptionResult struct {
	Claim *models.Claim
	Promo *models.Promo
	User  *models.User
}

type ServiceRedemption struct {
	container  *do.Injector
	rs         *redsync.Redsync
	postgresDB *bun.DB

	serviceUser *ServiceUser
}

func NewServiceRedemption(container *do.Injector) (*ServiceRedemption, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceRedemption{container, rs, postgresDB, serviceUser}, nil
}

// RedeemCode burns a claimed code on behalf of staff. A code redeems exactly
// once: the activation insert, the claim flip and the staff counter all
// commit together or not at all. Codes whose promo was deleted are refused;
// an activation must always point at a real promo.
func (service *ServiceRedemption) RedeemCode(ctx context.Context, staff *models.Staff, code string) (*RedemptionResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errorx.Wrap(errors.New("code must not be empty"), errorx.Validation)
	}

	mutex := service.rs.NewMutex(LockKeyRedeem(code), redsync.WithExpiry(10*time.Second))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrRedeemLock, errorx.RateLimiting)
	}
	//nolint:errcheck
	defer mutex.Unlock()

	var result RedemptionResult
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		claim, promo, err := runRedeemChecks(redeemChecks{
			activated: func() (*models.Activation, error) {
				return datastore.FindActivationByCode(ctx, tx, code)
			},
			claim: func() (*models.Claim, error) {
				return datastore.FindClaimByCode(ctx, tx, code)
			},
			promo: func(promoID int64) (*models.Promo, error) {
				return datastore.FindPromoByID(ctx, tx, promoID)
			},
		})
		if err != nil {
			return err
		}

		now := time.Now()
		_, err = datastore.CreateActivation(ctx, tx, &models.Activation{
			PromoID:     claim.PromoID,
			Code:        code,
			ActivatedBy: staff.ID,
			ActivatedAt: now,
		})
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}

		err = datastore.MarkClaimRedeemed(ctx, tx, claim.ID, now)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}

		err = datastore.IncrementActivatedPromos(ctx, tx, staff.ID)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}

		claim.Redeemed = true
		claim.RedeemedAt = &now
		result.Claim = claim
		result.Promo = promo
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.User, _ = service.serviceUser.FindUserByID(ctx, result.Claim.UserID)

	return &result, nil
}

// redeemChecks supplies the redemption preconditions lazily, in the order
// the reply should name them: an already-burned code wins over an unknown
// one, which wins over a missing promo.
type redeemChecks struct {
	activated func() (*models.Activation, error)
	claim     func() (*models.Claim, error)
	promo     func(promoID int64) (*models.Promo, error)
}

func runRedeemChecks(checks redeemChecks) (*models.Claim, *models.Promo, error) {
	_, err := checks.activated()
	if err == nil {
		return nil, nil, errorx.Wrap(ErrCodeAlreadyActivated, errorx.Invalid)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	claim, err := checks.claim()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(ErrCodeNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}
	if claim.Redeemed {
		return nil, nil, errorx.Wrap(ErrCodeAlreadyActivated, errorx.Invalid)
	}

	promo, err := checks.promo(claim.PromoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(ErrPromoNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	return claim, promo, nil
}

// ManualActivate burns a code that was never claimed through the bot,
// attributing it to the chosen promo. The promo slot is reserved with the
// same conditional increment as a claim, so a manual activation cannot
// overshoot the limit either.
func (service *ServiceRedemption) ManualActivate(ctx context.Context, staff *models.Staff, promoID int64, code string) (*models.Promo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errorx.Wrap(errors.New("code must not be empty"), errorx.Validation)
	}

	mutex := service.rs.NewMutex(LockKeyRedeem(code), redsync.WithExpiry(10*time.Second))
	if err := mutex.TryLock(); err != nil {
		return nil, errorx.Wrap(ErrRedeemLock, errorx.RateLimiting)
	}
	//nolint:errcheck
	defer mutex.Unlock()

	var promo *models.Promo
	now := time.Now()
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := datastore.FindActivationByCode(ctx, tx, code)
		if err == nil {
			return errorx.Wrap(ErrCodeAlreadyActivated, errorx.Invalid)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return errorx.Wrap(err, errorx.Service)
		}

		reserved, err := datastore.ReservePromoSlot(ctx, tx, promoID, now)
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}

		promo, err = datastore.FindPromoByID(ctx, tx, promoID)
		if errors.Is(err, sql.ErrNoRows) {
			return errorx.Wrap(ErrPromoNotFound, errorx.NotExist)
		}
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}
		if !reserved {
			return reserveFailureErr(promo, now)
		}

		_, err = datastore.CreateActivation(ctx, tx, &models.Activation{
			PromoID:     promoID,
			Code:        code,
			ActivatedBy: staff.ID,
			ActivatedAt: now,
		})
		if err != nil {
			return errorx.Wrap(err, errorx.Service)
		}

		return datastore.IncrementActivatedPromos(ctx, tx, staff.ID)
	})
	if err != nil {
		return nil, err
	}

	return promo, nil
}

// HasActivation reports whether the code was already burned, used by the
// manual-activation wizard before offering the promo picker.
func (service *ServiceRedemption) HasActivation(ctx context.Context, code string) (*models.Activation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	activation, err := datastore.FindActivationByCode(ctx, service.postgresDB, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return activation, nil
}

// HasClaim looks the code up among handed-out claims.
func (service *ServiceRedemption) HasClaim(ctx context.Context, code string) (*models.Claim, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	claim, err := datastore.FindClaimByCode(ctx, service.postgresDB, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return claim, nil
}

func (service *ServiceRedemption) RecentActivations(ctx context.Context, limit int) ([]*models.Activation, error) {
	if limit <= 0 {
		limit = HISTORY_DEFAULT_LIMIT
	}
	return datastore.GetRecentActivations(ctx, service.postgresDB, limit)
}

func (service *ServiceRedemption) StaffActivations(ctx context.Context, staffID int64, limit int) ([]*models.Activation, error) {
	if limit <= 0 {
		limit = HISTORY_DEFAULT_LIMIT
	}
	return datastore.GetActivationsByStaff(ctx, service.postgresDB, staffID, limit)
}

func (service *ServiceRedemption) StaffStats(ctx context.Context, staffID int64) ([]*models.ActivationCount, error) {
	return datastore.CountActivationsByStaff(ctx, service.postgresDB, staffID)
}
