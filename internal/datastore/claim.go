package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"promobot/internal/models"
)

func CreateTableClaim(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Claim)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Claim)(nil)).Index("index_claim_user_promo").IfNotExists().Column("user_id", "promo_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateClaim(ctx context.Context, db bun.IDB, claim *models.Claim) (*models.Claim, error) {
	_, err := db.NewInsert().Model(claim).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return claim, nil
}

func FindClaimByCode(ctx context.Context, db bun.IDB, code string) (*models.Claim, error) {
	var claim models.Claim
	err := db.NewSelect().Model(&claim).Where("code = ?", code).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetClaimsByUser returns the user's claims newest first with the promo
// resolved when it still exists.
func GetClaimsByUser(ctx context.Context, db *bun.DB, userID int64) ([]*models.Claim, error) {
	var claims []*models.Claim
	err := db.NewSelect().Model(&claims).
		Relation("Promo").
		Where("claim.user_id = ?", userID).
		Order("claim.claimed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

func HasClaimed(ctx context.Context, db bun.IDB, userID int64, promoID int64) (bool, error) {
	return db.NewSelect().
		Model((*models.Claim)(nil)).
		Where("user_id = ?", userID).
		Where("promo_id = ?", promoID).
		Exists(ctx)
}

func MarkClaimRedeemed(ctx context.Context, db bun.IDB, claimID int64, at time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.Claim)(nil)).
		Set("redeemed = true").
		Set("redeemed_at = ?", at).
		Where("id = ?", claimID).
		Exec(ctx)
	return err
}
