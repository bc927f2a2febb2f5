package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"promobot/internal/models"
)

func availablePromo(now time.Time) *models.Promo {
	return &models.Promo{ID: 1, IsActive: true, TotalLimit: 5, UsedCount: 0, ExpiresAt: now.Add(time.Hour)}
}

func TestRunClaimChecksOrdering(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		claimed     bool
		member      bool
		promo       *models.Promo
		promoErr    error
		wantErr     error
		wantStopped string
	}{
		{
			name:        "already claimed wins over everything",
			claimed:     true,
			wantErr:     ErrAlreadyClaimed,
			wantStopped: "member",
		},
		{
			name:        "membership checked before promo lookup",
			member:      false,
			wantErr:     ErrMembershipRequired,
			wantStopped: "promo",
		},
		{
			name:     "missing promo",
			member:   true,
			promoErr: sql.ErrNoRows,
			wantErr:  ErrPromoNotFound,
		},
		{
			name:    "inactive promo",
			member:  true,
			promo:   &models.Promo{IsActive: false, TotalLimit: 5, ExpiresAt: now.Add(time.Hour)},
			wantErr: ErrPromoInactive,
		},
		{
			name:    "expired promo",
			member:  true,
			promo:   &models.Promo{IsActive: true, TotalLimit: 5, ExpiresAt: now.Add(-time.Hour)},
			wantErr: ErrPromoExpired,
		},
		{
			name:    "exhausted promo",
			member:  true,
			promo:   &models.Promo{IsActive: true, TotalLimit: 5, UsedCount: 5, ExpiresAt: now.Add(time.Hour)},
			wantErr: ErrLimitExhausted,
		},
		{
			name:   "all checks pass",
			member: true,
			promo:  availablePromo(now),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := map[string]bool{}
			checks := claimChecks{
				claimed: func() (bool, error) {
					called["claimed"] = true
					return tt.claimed, nil
				},
				member: func() (bool, error) {
					called["member"] = true
					return tt.member, nil
				},
				promo: func() (*models.Promo, error) {
					called["promo"] = true
					return tt.promo, tt.promoErr
				},
			}

			promo, err := runClaimChecks(checks, now)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if promo != tt.promo {
					t.Error("expected the checked promo back")
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantStopped != "" && called[tt.wantStopped] {
				t.Errorf("check %q ran after an earlier one failed", tt.wantStopped)
			}
		})
	}
}

// A promo that still reads as available after the reservation matched no rows
// must map to an error; returning nil here used to let a claim report success
// without inserting anything.
func TestReserveFailureErrNeverNil(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		promo   *models.Promo
		wantErr error
	}{
		{
			name:    "inactive",
			promo:   &models.Promo{IsActive: false, TotalLimit: 5, ExpiresAt: now.Add(time.Hour)},
			wantErr: ErrPromoInactive,
		},
		{
			name:    "expired",
			promo:   &models.Promo{IsActive: true, TotalLimit: 5, ExpiresAt: now.Add(-time.Hour)},
			wantErr: ErrPromoExpired,
		},
		{
			name:    "exhausted",
			promo:   &models.Promo{IsActive: true, TotalLimit: 5, UsedCount: 5, ExpiresAt: now.Add(time.Hour)},
			wantErr: ErrLimitExhausted,
		},
		{
			name:    "still available, concurrent writer",
			promo:   availablePromo(now),
			wantErr: ErrClaimConflict,
		},
		{
			name:    "expires exactly now, still available",
			promo:   &models.Promo{IsActive: true, TotalLimit: 5, UsedCount: 0, ExpiresAt: now},
			wantErr: ErrClaimConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reserveFailureErr(tt.promo, now)
			if err == nil {
				t.Fatal("reservation failure must never map to nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunRedeemChecksOrdering(t *testing.T) {
	freshClaim := &models.Claim{ID: 1, PromoID: 7, Code: "ABC123"}
	promo := &models.Promo{ID: 7, Name: "Summer"}

	tests := []struct {
		name         string
		activatedErr error
		claim        *models.Claim
		claimErr     error
		promoErr     error
		wantErr      error
	}{
		{
			name:    "already activated wins over unknown code",
			wantErr: ErrCodeAlreadyActivated,
		},
		{
			name:         "unknown code",
			activatedErr: sql.ErrNoRows,
			claimErr:     sql.ErrNoRows,
			wantErr:      ErrCodeNotFound,
		},
		{
			name:         "claim flagged redeemed",
			activatedErr: sql.ErrNoRows,
			claim:        &models.Claim{ID: 1, PromoID: 7, Redeemed: true},
			wantErr:      ErrCodeAlreadyActivated,
		},
		{
			name:         "promo deleted since claim",
			activatedErr: sql.ErrNoRows,
			claim:        freshClaim,
			promoErr:     sql.ErrNoRows,
			wantErr:      ErrPromoNotFound,
		},
		{
			name:         "redeemable",
			activatedErr: sql.ErrNoRows,
			claim:        freshClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := redeemChecks{
				activated: func() (*models.Activation, error) {
					if tt.activatedErr != nil {
						return nil, tt.activatedErr
					}
					return &models.Activation{Code: "ABC123"}, nil
				},
				claim: func() (*models.Claim, error) {
					return tt.claim, tt.claimErr
				},
				promo: func(promoID int64) (*models.Promo, error) {
					if promoID != freshClaim.PromoID {
						t.Errorf("promo looked up with id %d", promoID)
					}
					return promo, tt.promoErr
				},
			}

			gotClaim, gotPromo, err := runRedeemChecks(checks)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if gotClaim != tt.claim || gotPromo != promo {
					t.Error("expected the checked claim and promo back")
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
