package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"promobot/internal/models"
)

func CreateTableActivation(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Activation)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Activation)(nil)).Index("index_activation_activated_by").IfNotExists().Column("activated_by").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateActivation(ctx context.Context, db bun.IDB, activation *models.Activation) (*models.Activation, error) {
	_, err := db.NewInsert().Model(activation).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return activation, nil
}

func FindActivationByCode(ctx context.Context, db bun.IDB, code string) (*models.Activation, error) {
	var activation models.Activation
	err := db.NewSelect().Model(&activation).Where("code = ?", code).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

func GetRecentActivations(ctx context.Context, db *bun.DB, limit int) ([]*models.Activation, error) {
	var activations []*models.Activation
	err := db.NewSelect().Model(&activations).
		Relation("Promo").
		Order("activation.activated_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return activations, nil
}

func GetActivationsByStaff(ctx context.Context, db *bun.DB, staffID int64, limit int) ([]*models.Activation, error) {
	var activations []*models.Activation
	err := db.NewSelect().Model(&activations).
		Relation("Promo").
		Where("activation.activated_by = ?", staffID).
		Order("activation.activated_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return activations, nil
}

// CountActivationsByStaff groups a staff member's activations per promo.
func CountActivationsByStaff(ctx context.Context, db *bun.DB, staffID int64) ([]*models.ActivationCount, error) {
	var counts []*models.ActivationCount
	err := db.NewSelect().
		Model((*models.Activation)(nil)).
		ColumnExpr("promo_id").
		ColumnExpr("count(*) AS count").
		Where("activated_by = ?", staffID).
		Group("promo_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, err
	}

	return counts, nil
}

func CountActivations(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Activation)(nil)).Count(ctx)
}
