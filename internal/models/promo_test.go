package models

import (
	"testing"
	"time"
)

func TestPromoAvailable(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		promo Promo
		want  bool
	}{
		{
			name:  "active with room",
			promo: Promo{IsActive: true, TotalLimit: 10, UsedCount: 3, ExpiresAt: now.Add(time.Hour)},
			want:  true,
		},
		{
			name:  "deactivated",
			promo: Promo{IsActive: false, TotalLimit: 10, UsedCount: 3, ExpiresAt: now.Add(time.Hour)},
			want:  false,
		},
		{
			name:  "expired",
			promo: Promo{IsActive: true, TotalLimit: 10, UsedCount: 3, ExpiresAt: now.Add(-time.Hour)},
			want:  false,
		},
		{
			name:  "limit reached",
			promo: Promo{IsActive: true, TotalLimit: 10, UsedCount: 10, ExpiresAt: now.Add(time.Hour)},
			want:  false,
		},
		{
			name:  "last slot",
			promo: Promo{IsActive: true, TotalLimit: 10, UsedCount: 9, ExpiresAt: now.Add(time.Hour)},
			want:  true,
		},
		{
			name:  "expires exactly now",
			promo: Promo{IsActive: true, TotalLimit: 10, UsedCount: 0, ExpiresAt: now},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.promo.Available(now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromoLimitReached(t *testing.T) {
	promo := Promo{TotalLimit: 5, UsedCount: 6}
	if !promo.LimitReached() {
		t.Error("over-limit promo should report limit reached")
	}
}

func TestStaffDisplayName(t *testing.T) {
	tests := []struct {
		staff Staff
		want  string
	}{
		{Staff{FirstName: "Ann"}, "Ann"},
		{Staff{FirstName: "Ann", LastName: "Lee"}, "Ann Lee"},
		{Staff{FirstName: "Ann", LastName: "Lee", Username: "annlee"}, "Ann Lee @annlee"},
	}

	for _, tt := range tests {
		if got := tt.staff.DisplayName(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
