package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProductInput represents the create product input. Price is in
// rupees and Stock in base units; both are converted at the boundary.
type CreateProductInput struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Name       string
	Type       enum.ProductType
	WeightUnit *enum.WeightUnit
	Price      float64
	Stock      float64
	StockAlert float64
	GSTRate    float64
	Barcode    *string
}

func validateProductShape(pType enum.ProductType, weightUnit *enum.WeightUnit, price, stock, gstRate float64) error {
	if !pType.Valid() {
		return apperror.NewBadRequestError(fmt.Sprintf("Unknown product type %q", pType))
	}
	if pType == enum.ProductTypeWeight {
		if weightUnit == nil {
			return apperror.NewBadRequestError("Weight unit is required for weight-type products")
		}
		if !weightUnit.Valid() {
			return apperror.NewBadRequestError(fmt.Sprintf("Unknown weight unit %q", *weightUnit))
		}
	} else if weightUnit != nil {
		return apperror.NewBadRequestError("Weight unit is only valid for weight-type products")
	}
	if price < 0 {
		return apperror.NewBadRequestError("Price cannot be negative")
	}
	if stock < 0 {
		return apperror.NewBadRequestError("Stock cannot be negative")
	}
	if gstRate < 0 || gstRate > 100 {
		return apperror.NewBadRequestError("GST rate must be between 0 and 100")
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperror.NewBadRequestError("Name is required")
	}
	if err := validateProductShape(input.Type, input.WeightUnit, input.Price, input.Stock, input.GSTRate); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	if input.Barcode != nil && *input.Barcode != "" {
		existing, err := s.productRepo.GetByBarcode(ctx, *input.Barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Barcode already exists")
		}
	}

	product := &entity.Product{
		UserID:     input.UserID,
		CategoryID: input.CategoryID,
		Name:       strings.TrimSpace(input.Name),
		Type:       input.Type,
		WeightUnit: input.WeightUnit,
		GSTRate:    input.GSTRate,
		Barcode:    input.Barcode,
	}
	product.SetPriceRupees(input.Price)
	product.SetStockBaseUnits(input.Stock)
	product.StockAlertMilli = int64(input.StockAlert*1000 + 0.5)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByBarcode retrieves a product by barcode, for counter scanning
func (s *ProductService) GetProductByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	product, err := s.productRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	Name       *string
	Type       *enum.ProductType
	WeightUnit *enum.WeightUnit
	Price      *float64
	Stock      *float64
	StockAlert *float64
	GSTRate    *float64
	Barcode    *string
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if input.Barcode != nil && (product.Barcode == nil || *input.Barcode != *product.Barcode) {
		existing, err := s.productRepo.GetByBarcode(ctx, *input.Barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, apperror.NewConflictError("Barcode already exists")
		}
		product.Barcode = input.Barcode
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.WeightUnit != nil {
		product.WeightUnit = input.WeightUnit
	}
	if input.Price != nil {
		product.SetPriceRupees(*input.Price)
	}
	if input.Stock != nil {
		product.SetStockBaseUnits(*input.Stock)
	}
	if input.StockAlert != nil {
		product.StockAlertMilli = int64(*input.StockAlert*1000 + 0.5)
	}
	if input.GSTRate != nil {
		product.GSTRate = *input.GSTRate
	}

	wu := product.WeightUnit
	if product.Type == enum.ProductTypeUnit {
		wu = nil
		product.WeightUnit = nil
	}
	if err := validateProductShape(product.Type, wu, product.PriceRupees(), product.StockBaseUnits(), product.GSTRate); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	return s.productRepo.Delete(ctx, id)
}

// GetLowStockProducts returns products at or below their alert threshold
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

// ImportProductRow represents a single row from the import file
type ImportProductRow struct {
	Name         string
	Type         string
	WeightUnit   string
	Price        float64
	Stock        float64
	StockAlert   float64
	GSTRate      float64
	Barcode      string
	CategoryName string
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportProducts validates and bulk-creates products from parsed import rows
func (s *ProductService) ImportProducts(ctx context.Context, userID uuid.UUID, rows []ImportProductRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	// Load categories once for name-based matching
	categoryMap := make(map[string]*uuid.UUID)
	categories, _, err := s.categoryRepo.List(ctx, &pagination.PaginationParams{Page: 1, PerPage: 1000}, "")
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categoryMap[strings.ToLower(categories[i].Name)] = &categories[i].ID
	}

	// Barcodes seen in this batch, to catch duplicates within the file
	seenBarcodes := make(map[string]int)

	var validProducts []entity.Product

	for i, row := range rows {
		rowNum := i + 2 // +2 because row 1 is the header, data starts at row 2

		if strings.TrimSpace(row.Name) == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"})
			continue
		}

		pType, err := enum.ParseProductType(row.Type)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "type", Message: err.Error()})
			continue
		}

		var weightUnit *enum.WeightUnit
		if pType == enum.ProductTypeWeight {
			wu, err := enum.ParseWeightUnit(row.WeightUnit)
			if err != nil {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "weight_unit", Message: err.Error()})
				continue
			}
			weightUnit = &wu
		}

		if err := validateProductShape(pType, weightUnit, row.Price, row.Stock, row.GSTRate); err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "price", Message: err.Error()})
			continue
		}

		var barcode *string
		if code := strings.TrimSpace(row.Barcode); code != "" {
			if prevRow, exists := seenBarcodes[code]; exists {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "barcode",
					Message: fmt.Sprintf("Duplicate barcode '%s' (same as row %d)", code, prevRow),
				})
				continue
			}
			existing, err := s.productRepo.GetByBarcode(ctx, code)
			if err != nil {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "barcode", Message: "Error checking barcode: " + err.Error()})
				continue
			}
			if existing != nil {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "barcode",
					Message: fmt.Sprintf("Barcode '%s' already exists", code),
				})
				continue
			}
			seenBarcodes[code] = rowNum
			barcode = &code
		}

		var categoryID *uuid.UUID
		if row.CategoryName != "" {
			if id, ok := categoryMap[strings.ToLower(strings.TrimSpace(row.CategoryName))]; ok {
				categoryID = id
			}
		}

		product := entity.Product{
			UserID:     userID,
			CategoryID: categoryID,
			Name:       strings.TrimSpace(row.Name),
			Type:       pType,
			WeightUnit: weightUnit,
			GSTRate:    row.GSTRate,
			Barcode:    barcode,
		}
		product.SetPriceRupees(row.Price)
		product.SetStockBaseUnits(row.Stock)
		product.StockAlertMilli = int64(row.StockAlert*1000 + 0.5)

		validProducts = append(validProducts, product)
	}

	if len(validProducts) > 0 {
		if err := s.productRepo.CreateBatch(ctx, validProducts); err != nil {
			return nil, apperror.NewAppError(500, "Failed to import products: "+err.Error())
		}
	}

	result.Successful = len(validProducts)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}
