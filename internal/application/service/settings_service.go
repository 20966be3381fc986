package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
)

// SettingsService handles the shop profile and billing defaults
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the shop settings, creating defaults if not exists
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entity.ShopSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = &entity.ShopSettings{
			UserID:         userID,
			ShopName:       "My Shop",
			GSTEnabled:     true,
			DefaultGSTRate: 5,
			Currency:       "INR",
			ReceiptFooter:  "Thank you, visit again!",
			LowStockAlerts: true,
		}
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// UpdateSettingsInput represents the input for updating shop settings
type UpdateSettingsInput struct {
	UserID         uuid.UUID
	ShopName       *string
	ShopAddress    *string
	ShopPhone      *string
	GSTNumber      *string
	GSTEnabled     *bool
	DefaultGSTRate *float64
	Currency       *string
	ReceiptFooter  *string
	LowStockAlerts *bool
}

// UpdateSettings updates the shop settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.ShopSettings, error) {
	settings, err := s.GetSettings(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.ShopName != nil {
		name := strings.TrimSpace(*input.ShopName)
		if name == "" {
			return nil, apperror.NewBadRequestError("Shop name cannot be empty")
		}
		settings.ShopName = name
	}
	if input.ShopAddress != nil {
		settings.ShopAddress = input.ShopAddress
	}
	if input.ShopPhone != nil {
		settings.ShopPhone = input.ShopPhone
	}
	if input.GSTNumber != nil {
		settings.GSTNumber = input.GSTNumber
	}
	if input.GSTEnabled != nil {
		settings.GSTEnabled = *input.GSTEnabled
	}
	if input.DefaultGSTRate != nil {
		if *input.DefaultGSTRate < 0 || *input.DefaultGSTRate > 100 {
			return nil, apperror.NewBadRequestError("Default GST rate must be between 0 and 100")
		}
		settings.DefaultGSTRate = *input.DefaultGSTRate
	}
	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.ReceiptFooter != nil {
		settings.ReceiptFooter = *input.ReceiptFooter
	}
	if input.LowStockAlerts != nil {
		settings.LowStockAlerts = *input.LowStockAlerts
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
