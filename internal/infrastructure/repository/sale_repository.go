package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	domainRepo "github.com/shopbill/shopbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// CreateWithStockDeduction records the sale, its items and the stock
// deductions in a single transaction. Each deduction uses a conditional
// update (stock_milli >= amount) so stock can never go negative; if any
// product fails the condition the whole transaction is rolled back and
// the failing product IDs are returned.
func (r *saleRepository) CreateWithStockDeduction(ctx context.Context, sale *entity.Sale, items []entity.SaleItem, deductions map[uuid.UUID]int64) ([]uuid.UUID, error) {
	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range deductions {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock_milli >= ?", id, amount).
				Update("stock_milli", gorm.Expr("stock_milli - ?", amount))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return gorm.ErrInvalidTransaction
		}

		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].SaleID = sale.ID
		}
		return tx.Create(&items).Error
	})

	// Rolled back due to insufficient stock, not a database failure
	if err == gorm.ErrInvalidTransaction && len(failedIDs) > 0 {
		return failedIDs, nil
	}

	return failedIDs, err
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).First(&sale, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{})

	if params.Search != "" {
		query = query.Where("invoice_no ILIKE ? OR customer_name ILIKE ? OR customer_mobile ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at < ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder != "" && (params.SortOrder == "ASC" || params.SortOrder == "asc") {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) ListRange(ctx context.Context, from, to time.Time) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", enum.SaleStatusComplete, from, to).
		Preload("Items").
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

// CancelWithStockRestore marks the sale cancelled and puts the deducted
// stock back in one transaction.
func (r *saleRepository) CancelWithStockRestore(ctx context.Context, id uuid.UUID, increments map[uuid.UUID]int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Sale{}).
			Where("id = ?", id).
			Update("status", enum.SaleStatusCancelled).Error; err != nil {
			return err
		}

		for pid, amount := range increments {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", pid).
				Update("stock_milli", gorm.Expr("stock_milli + ?", amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *saleRepository) All(ctx context.Context) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
