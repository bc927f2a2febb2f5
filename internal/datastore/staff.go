package datastore

import (
	"context"

	"github.com/uptrace/bun"

	"promobot/internal/models"
)

func CreateTableStaff(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Staff)(nil)).IfNotExists().Exec(ctx)
	return err
}

func FindStaffByID(ctx context.Context, db *bun.DB, staffID int64) (*models.Staff, error) {
	var staff models.Staff
	err := db.NewSelect().Model(&staff).Where("id = ?", staffID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// CreateStaff inserts a roster entry; re-adding an existing id reactivates it
// and refreshes the profile instead of failing on the primary key.
func CreateStaff(ctx context.Context, db *bun.DB, staff *models.Staff) (*models.Staff, error) {
	_, err := db.NewInsert().
		Model(staff).
		On("CONFLICT (id) DO UPDATE").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("username = EXCLUDED.username").
		Set("role = EXCLUDED.role").
		Set("is_active = true").
		Set("added_by = EXCLUDED.added_by").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return staff, nil
}

func SetStaffActive(ctx context.Context, db *bun.DB, staffID int64, active bool) error {
	_, err := db.NewUpdate().
		Model((*models.Staff)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", staffID).
		Exec(ctx)
	return err
}

func DeleteStaff(ctx context.Context, db *bun.DB, staffID int64) error {
	_, err := db.NewDelete().Model((*models.Staff)(nil)).Where("id = ?", staffID).Exec(ctx)
	return err
}

func IncrementActivatedPromos(ctx context.Context, db bun.IDB, staffID int64) error {
	_, err := db.NewUpdate().
		Model((*models.Staff)(nil)).
		Set("activated_promos = activated_promos + 1").
		Where("id = ?", staffID).
		Exec(ctx)
	return err
}

func GetAllStaff(ctx context.Context, db *bun.DB, role string) ([]*models.Staff, error) {
	var staff []*models.Staff
	err := db.NewSelect().Model(&staff).
		Where("role = ?", role).
		Order("added_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return staff, nil
}
