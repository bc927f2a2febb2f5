package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Promo struct {
	bun.BaseModel `bun:"table:promo"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description,notnull" json:"description"`
	TotalLimit    int       `bun:"total_limit,notnull" json:"total_limit"`
	UsedCount     int       `bun:"used_count,notnull,default:0" json:"used_count"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at"`
	IsActive      bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

func (promo *Promo) Expired(now time.Time) bool {
	return now.After(promo.ExpiresAt)
}

func (promo *Promo) LimitReached() bool {
	return promo.UsedCount >= promo.TotalLimit
}

// Available means the promo can still hand out codes: active, not expired,
// limit not reached.
func (promo *Promo) Available(now time.Time) bool {
	return promo.IsActive && !promo.Expired(now) && !promo.LimitReached()
}
