package repository

import (
	"context"

	"github.com/shopbill/shopbill-api/internal/domain/entity"
	domainRepo "github.com/shopbill/shopbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type backupRepository struct {
	db *gorm.DB
}

// NewBackupRepository creates a new backup repository
func NewBackupRepository(db *gorm.DB) domainRepo.BackupRepository {
	return &backupRepository{db: db}
}

// Restore wipes the customer list and the catalog, reinserts them from
// the backup and appends the backed-up sales, all in a single
// transaction. Past invoices are immutable, so sales are never deleted.
func (r *backupRepository) Restore(ctx context.Context, products []entity.Product, sales []entity.Sale, customers []entity.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(&entity.Customer{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(&entity.Product{}).Error; err != nil {
			return err
		}

		if len(customers) > 0 {
			if err := tx.CreateInBatches(customers, 100).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := tx.CreateInBatches(products, 100).Error; err != nil {
				return err
			}
		}
		if len(sales) > 0 {
			if err := tx.CreateInBatches(sales, 50).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
