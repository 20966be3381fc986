package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

// SettingsRepository defines the interface for shop settings data access
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.ShopSettings, error)
	// Get returns the shop profile regardless of owner (single-shop
	// deployments have one row).
	Get(ctx context.Context) (*entity.ShopSettings, error)
	Create(ctx context.Context, settings *entity.ShopSettings) error
	Update(ctx context.Context, settings *entity.ShopSettings) error
}
