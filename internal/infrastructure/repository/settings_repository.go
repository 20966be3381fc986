package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUserID retrieves shop settings by owner user ID
func (r *settingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.ShopSettings, error) {
	var settings entity.ShopSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get retrieves the shop profile. Single-shop deployments have one row.
func (r *settingsRepository) Get(ctx context.Context) (*entity.ShopSettings, error) {
	var settings entity.ShopSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create creates new shop settings
func (r *settingsRepository) Create(ctx context.Context, settings *entity.ShopSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

// Update updates existing shop settings
func (r *settingsRepository) Update(ctx context.Context, settings *entity.ShopSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
