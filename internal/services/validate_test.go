package services

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePromoName(t *testing.T) {
	if err := ValidatePromoName("Summer sale"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, name := range []string{"", "   ", "\t\n"} {
		if err := ValidatePromoName(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestValidatePromoLimit(t *testing.T) {
	tests := []struct {
		name       string
		totalLimit int
		usedCount  int
		wantErr    bool
		wantBelow  bool
	}{
		{"fresh promo", 10, 0, false, false},
		{"raise over usage", 20, 10, false, false},
		{"equal to usage", 10, 10, false, false},
		{"below usage", 5, 10, true, true},
		{"zero", 0, 0, true, false},
		{"negative", -1, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePromoLimit(tt.totalLimit, tt.usedCount)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantBelow && !errors.Is(err, ErrLimitBelowUsage) {
				t.Errorf("expected ErrLimitBelowUsage, got %v", err)
			}
		})
	}
}

func TestValidatePromoExpiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := ValidatePromoExpiry(now.Add(time.Minute), now); err != nil {
		t.Errorf("future expiry rejected: %v", err)
	}
	if err := ValidatePromoExpiry(now, now); err == nil {
		t.Error("expiry equal to now should be rejected")
	}
	if err := ValidatePromoExpiry(now.Add(-time.Minute), now); err == nil {
		t.Error("past expiry should be rejected")
	}
}

func TestGuardSelfModify(t *testing.T) {
	if err := GuardSelfModify(1, 2); err != nil {
		t.Errorf("distinct ids rejected: %v", err)
	}

	err := GuardSelfModify(7, 7)
	if !errors.Is(err, ErrSelfModify) {
		t.Errorf("expected ErrSelfModify, got %v", err)
	}
}

func TestLockKeyRedeemUppercases(t *testing.T) {
	if LockKeyRedeem("abc123") != LockKeyRedeem("ABC123") {
		t.Error("lock key must be case-insensitive over the code")
	}
}

func TestKeyFormats(t *testing.T) {
	if got := LockKeyUserClaim(42); got != "lock:user-claim:42" {
		t.Errorf("got %q", got)
	}
	if got := DBKeyPromo(7); got != "promo:7" {
		t.Errorf("got %q", got)
	}
	if got := DBKeyStaff(7); got != "staff:7" {
		t.Errorf("got %q", got)
	}
	if got := DBKeyMembership(7, "@Channel"); got != "membership:7:@channel" {
		t.Errorf("got %q", got)
	}
}
