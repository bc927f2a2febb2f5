package services

import "errors"

// Claim and redemption outcomes the bot turns into user-facing replies. The
// checks run in a fixed order, so a user who already holds a code is told so
// before any membership or availability check fires.
var (
	ErrAlreadyClaimed       = errors.New("promo already claimed")
	ErrMembershipRequired   = errors.New("channel membership required")
	ErrPromoNotFound        = errors.New("promo not found")
	ErrPromoInactive        = errors.New("promo is not active")
	ErrPromoExpired         = errors.New("promo has expired")
	ErrLimitExhausted       = errors.New("promo limit exhausted")
	ErrCodeNotFound         = errors.New("code not found")
	ErrCodeAlreadyActivated = errors.New("code already activated")
	ErrClaimLock            = errors.New("claim in progress")
	ErrClaimConflict        = errors.New("claim state changed, try again")
	ErrRedeemLock           = errors.New("redemption in progress")
)

// Staff roster outcomes.
var (
	ErrSelfModify      = errors.New("cannot modify own roster entry")
	ErrUnauthorized    = errors.New("not authorized")
	ErrStaffNotFound   = errors.New("staff not found")
	ErrLimitBelowUsage = errors.New("limit below current usage")
)
