package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	FindByLibrary(ctx context.Context, libraryID uuid.UUID) (*model.Settings, error)
	Create(ctx context.Context, settings *model.Settings) error
	Save(ctx context.Context, settings *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) FindByLibrary(ctx context.Context, libraryID uuid.UUID) (*model.Settings, error) {
	var settings model.Settings
	err := r.db.WithContext(ctx).First(&settings, "library_id = ?", libraryID).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Create(ctx context.Context, settings *model.Settings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
