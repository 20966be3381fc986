package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations.
type SaleRepository interface {
	// CreateWithStockDeduction records the sale, its item snapshots
	// and the per-product stock deductions in ONE transaction. A
	// deduction only applies where stock >= amount; products that
	// would go negative are returned as failedIDs and the whole
	// transaction (sale included) is rolled back.
	CreateWithStockDeduction(ctx context.Context, sale *entity.Sale, items []entity.SaleItem, deductions map[uuid.UUID]int64) (failedIDs []uuid.UUID, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
	// GetWithItems loads the sale together with its item snapshots.
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// ListRange returns completed sales in [from, to) with items, for
	// reporting and export.
	ListRange(ctx context.Context, from, to time.Time) ([]entity.Sale, error)
	// CancelWithStockRestore marks the sale cancelled and restores the
	// deducted stock in one transaction.
	CancelWithStockRestore(ctx context.Context, id uuid.UUID, increments map[uuid.UUID]int64) error
	// All returns every sale with items, for backup export.
	All(ctx context.Context) ([]entity.Sale, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string // matches invoice no, customer name or mobile
	Status        *enum.SaleStatus
	CustomerID    *uuid.UUID
	PaymentMethod *enum.PaymentMethod
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortOrder     string
}
