package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Claim is one code handed out to one user from one promo. PromoID is a weak
// reference: the promo may have been deleted since, so joins resolve it into
// a nullable Promo.
type Claim struct {
	bun.BaseModel `bun:"table:claim"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id"`
	PromoID       int64      `bun:"promo_id,notnull" json:"promo_id"`
	Code          string     `bun:"code,notnull,unique" json:"code"`
	ClaimedAt     time.Time  `bun:"claimed_at,default:current_timestamp" json:"claimed_at"`
	Redeemed      bool       `bun:"redeemed,notnull,default:false" json:"redeemed"`
	RedeemedAt    *time.Time `bun:"redeemed_at" json:"redeemed_at"`

	Promo *Promo `bun:"rel:belongs-to,join:promo_id=id" json:"promo"`
	User  *User  `bun:"rel:belongs-to,join:user_id=id" json:"user"`
}
