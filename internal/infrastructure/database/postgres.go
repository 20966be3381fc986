package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/config"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logrus.Info("connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	logrus.Info("running database migrations")

	err := db.AutoMigrate(
		// Auth entities
		&entity.User{},
		&entity.PasswordResetToken{},

		// Catalog entities
		&entity.Category{},
		&entity.Product{},

		// Sales entities
		&entity.Customer{},
		&entity.Sale{},
		&entity.SaleItem{},

		// System entities
		&entity.IdempotencyKey{},
		&entity.ShopSettings{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the admin user when configured via
// environment variables and ensures a shop profile row exists.
func SeedDefaultData(db *gorm.DB) error {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail != "" && adminPassword != "" {
		var existing entity.User
		if err := db.Where("email = ?", adminEmail).First(&existing).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				logrus.WithError(err).Warn("failed to hash admin password")
			} else {
				if adminName == "" {
					adminName = "Admin"
				}
				adminUser := entity.User{
					ID:       uuid.New(),
					Name:     adminName,
					Email:    adminEmail,
					Password: string(hashedPassword),
					Role:     entity.RoleAdmin,
				}
				if err := db.Create(&adminUser).Error; err != nil {
					logrus.WithError(err).Warn("failed to create admin user")
				} else {
					logrus.WithField("email", adminEmail).Info("admin user created")

					settings := entity.ShopSettings{
						UserID:   adminUser.ID,
						ShopName: viper.GetString("SHOP_NAME"),
					}
					if settings.ShopName == "" {
						settings.ShopName = "My Shop"
					}
					if err := db.Create(&settings).Error; err != nil {
						logrus.WithError(err).Warn("failed to create default shop settings")
					}
				}
			}
		} else {
			logrus.WithField("email", adminEmail).Debug("admin user already exists")
		}
	}

	return nil
}
