package repository

import (
	"context"

	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

// BackupRepository restores a backup document.
type BackupRepository interface {
	// Restore replaces the catalog and customer list wholesale and
	// appends the given sales, all inside one transaction: a failed
	// restore leaves the shop's data untouched.
	Restore(ctx context.Context, products []entity.Product, sales []entity.Sale, customers []entity.Customer) error
}
