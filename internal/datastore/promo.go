package datastore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"promobot/internal/models"
)

func CreateTablePromo(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Promo)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Promo)(nil)).Index("index_promo_is_active").IfNotExists().Column("is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreatePromo(ctx context.Context, db *bun.DB, promo *models.Promo) (*models.Promo, error) {
	_, err := db.NewInsert().Model(promo).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return promo, nil
}

func FindPromoByID(ctx context.Context, db bun.IDB, promoID int64) (*models.Promo, error) {
	var promo models.Promo
	err := db.NewSelect().Model(&promo).Where("id = ?", promoID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func GetAvailablePromos(ctx context.Context, db *bun.DB, now time.Time) ([]*models.Promo, error) {
	var promos []*models.Promo
	err := db.NewSelect().Model(&promos).
		Where("is_active = true").
		Where("expires_at >= ?", now).
		Where("used_count < total_limit").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return promos, nil
}

func GetAllPromos(ctx context.Context, db *bun.DB) ([]*models.Promo, error) {
	var promos []*models.Promo
	err := db.NewSelect().Model(&promos).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return promos, nil
}

func EditPromo(ctx context.Context, db *bun.DB, promo *models.Promo) (*models.Promo, error) {
	_, err := db.NewUpdate().Model(promo).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return promo, nil
}

func DeletePromo(ctx context.Context, db *bun.DB, promoID int64) error {
	_, err := db.NewDelete().Model((*models.Promo)(nil)).Where("id = ?", promoID).Exec(ctx)
	return err
}

func SetPromoActive(ctx context.Context, db *bun.DB, promoID int64, active bool) error {
	_, err := db.NewUpdate().
		Model((*models.Promo)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", promoID).
		Exec(ctx)
	return err
}

// ReservePromoSlot bumps used_count by one, but only while the promo is still
// claimable. The guard lives in the same UPDATE so two concurrent claims
// against the last slot cannot both get through; the loser sees zero rows
// affected. The expiry bound matches Promo.Expired: a promo expiring exactly
// now is still claimable.
func ReservePromoSlot(ctx context.Context, db bun.IDB, promoID int64, now time.Time) (bool, error) {
	res, err := db.NewUpdate().
		Model((*models.Promo)(nil)).
		Set("used_count = used_count + 1").
		Where("id = ?", promoID).
		Where("is_active = true").
		Where("expires_at >= ?", now).
		Where("used_count < total_limit").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func DeactivateExpiredPromos(ctx context.Context, db *bun.DB, now time.Time) (int64, error) {
	res, err := db.NewUpdate().
		Model((*models.Promo)(nil)).
		Set("is_active = false").
		Where("is_active = true").
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func CountPromos(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Promo)(nil)).Count(ctx)
}
