package service

import (
	"context"
	"time"

	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
)

// BackupService exports and restores the shop's data as one JSON
// document, so a shop can move between devices without a DBA.
type BackupService struct {
	backupRepo   repository.BackupRepository
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
}

// NewBackupService creates a new backup service
func NewBackupService(
	backupRepo repository.BackupRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) *BackupService {
	return &BackupService{
		backupRepo:   backupRepo,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
	}
}

// Backup is the export document
type Backup struct {
	Products   []entity.Product  `json:"products"`
	Sales      []entity.Sale     `json:"sales"`
	Customers  []entity.Customer `json:"customers"`
	ExportDate time.Time         `json:"exportDate"`
}

// Export collects the full catalog, sales history and customer list
func (s *BackupService) Export(ctx context.Context) (*Backup, error) {
	products, err := s.productRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	return &Backup{
		Products:   products,
		Sales:      sales,
		Customers:  customers,
		ExportDate: time.Now(),
	}, nil
}

// Import restores a backup. The catalog and customer list are replaced
// wholesale; sales are appended because past invoices are immutable.
// The restore runs in one transaction, so a failure partway leaves the
// shop's data exactly as it was.
func (s *BackupService) Import(ctx context.Context, backup *Backup) error {
	if backup == nil {
		return apperror.NewBadRequestError("Backup document is empty")
	}
	if backup.Products == nil && backup.Customers == nil && backup.Sales == nil {
		return apperror.NewBadRequestError("Backup document has no products, sales or customers")
	}

	return s.backupRepo.Restore(ctx, backup.Products, backup.Sales, backup.Customers)
}
