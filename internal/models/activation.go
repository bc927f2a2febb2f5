package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Activation records one redeemed code. The unique constraint on code is what
// makes double redemption impossible; rows are never updated after insert.
type Activation struct {
	bun.BaseModel `bun:"table:activation"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	PromoID       int64     `bun:"promo_id,notnull" json:"promo_id"`
	Code          string    `bun:"code,notnull,unique" json:"code"`
	ActivatedBy   int64     `bun:"activated_by,notnull" json:"activated_by"`
	ActivatedAt   time.Time `bun:"activated_at,default:current_timestamp" json:"activated_at"`

	Promo *Promo `bun:"rel:belongs-to,join:promo_id=id" json:"promo"`
}

type ActivationCount struct {
	PromoID int64 `bun:"promo_id" json:"promo_id"`
	Count   int   `bun:"count" json:"count"`
}
