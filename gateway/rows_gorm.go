package gateway

import (
	"context"
	"fmt"

	"skyvault/drive-api/internal/model"

	"gorm.io/gorm"
)

// GormRows implements Rows on top of the relational database
type GormRows struct {
	db *gorm.DB
}

func NewGormRows(db *gorm.DB) *GormRows {
	return &GormRows{db: db}
}

func (g *GormRows) ListByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File

	err := g.db.
		WithContext(ctx).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Order("created_at DESC").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

// ListSharedWith matches userID against the comma-joined shared_with
// column. The four patterns cover only/first/last/middle positions so a
// user ID never matches as a substring of another ID.
func (g *GormRows) ListSharedWith(ctx context.Context, userID string) ([]model.File, error) {
	var files []model.File

	err := g.db.
		WithContext(ctx).
		Where("is_trashed = ? AND (shared_with = ? OR shared_with LIKE ? OR shared_with LIKE ? OR shared_with LIKE ?)",
			false, userID, userID+",%", "%,"+userID, "%,"+userID+",%").
		Order("updated_at DESC").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shared files, %w", err)
	}

	return files, nil
}

func (g *GormRows) Get(ctx context.Context, id string) (*model.File, error) {
	var file model.File

	err := g.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&file).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch file, %w", err)
	}

	return &file, nil
}

func (g *GormRows) Insert(ctx context.Context, f *model.File) error {
	err := g.db.
		WithContext(ctx).
		Create(f).
		Error
	if err != nil {
		return fmt.Errorf("failed to insert file record, %w", err)
	}

	return nil
}

func (g *GormRows) Update(ctx context.Context, id string, patch map[string]any) error {
	tx := g.db.
		WithContext(ctx).
		Model(model.File{}).
		Where("id = ?", id).
		Updates(patch)
	if tx.Error != nil {
		return fmt.Errorf("failed to update file record, %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (g *GormRows) UserIDByEmail(ctx context.Context, email string) (string, error) {
	var user model.User

	err := g.db.
		WithContext(ctx).
		Where("email = ?", email).
		First(&user).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to look up user by email, %w", err)
	}

	return user.ID, nil
}
