package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/billing"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/pagination"
	"github.com/shopbill/shopbill-api/pkg/utils"
)

// SaleService handles checkout and sales history
type SaleService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// SaleItemInput represents one cart line at checkout. Weight and
// WeightUnit are set for weight-type products only.
type SaleItemInput struct {
	ProductID  uuid.UUID
	Quantity   int
	Weight     *float64
	WeightUnit *enum.WeightUnit
}

// CreateSaleInput represents the checkout input
type CreateSaleInput struct {
	UserID          uuid.UUID
	CustomerID      *uuid.UUID
	CustomerName    string
	CustomerMobile  string
	DiscountPercent float64
	GSTEnabled      bool
	PaymentMethod   enum.PaymentMethod
	Items           []SaleItemInput
}

// paise converts a rupee amount to paise, rounding half away from zero.
func paise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// buildCart replays the checkout lines through the billing engine so
// pricing, weight conversion and aggregate stock checks follow the same
// rules the cart preview used.
func (s *SaleService) buildCart(items []SaleItemInput, productMap map[uuid.UUID]*entity.Product) (*billing.Cart, error) {
	cart := billing.NewCart()

	for _, item := range items {
		product, exists := productMap[item.ProductID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}

		var weight *billing.WeightAmount
		if item.Weight != nil {
			if item.WeightUnit == nil {
				return nil, apperror.NewBadRequestError("Weight unit is required when weight is given")
			}
			weight = &billing.WeightAmount{Value: *item.Weight, Unit: *item.WeightUnit}
		}

		if _, err := cart.AddLine(*product, item.Quantity, weight); err != nil {
			var stockErr *billing.InsufficientStockError
			if errors.As(err, &stockErr) {
				return nil, apperror.NewInsufficientStockError([]string{stockErr.ProductName})
			}
			return nil, apperror.NewBadRequestError(err.Error())
		}
	}

	return cart, nil
}

// resolveCustomer validates an explicit customer ID, or upserts by
// mobile when a walk-in customer gives their number at the counter.
func (s *SaleService) resolveCustomer(ctx context.Context, input *CreateSaleInput) (*uuid.UUID, error) {
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		return input.CustomerID, nil
	}

	mobile := strings.TrimSpace(input.CustomerMobile)
	if mobile == "" {
		return nil, nil
	}

	existing, err := s.customerRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &existing.ID, nil
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = "Walk-in"
	}
	customer := &entity.Customer{
		UserID: input.UserID,
		Name:   name,
		Mobile: mobile,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return &customer.ID, nil
}

// CreateSale records a checkout: it recomputes totals through the
// billing engine, then persists the sale, its item snapshots and the
// per-product stock deductions in one transaction.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Cart is empty")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Unknown payment method %q", input.PaymentMethod))
	}

	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	cart, err := s.buildCart(input.Items, productMap)
	if err != nil {
		return nil, err
	}

	totals := cart.Totals(input.DiscountPercent, input.GSTEnabled)
	if totals.Total <= 0 {
		return nil, apperror.NewBadRequestError("Sale total must be greater than zero")
	}

	customerID, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	saleItems := make([]entity.SaleItem, 0, len(cart.Lines()))
	for _, line := range cart.Lines() {
		item := entity.SaleItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   paise(line.UnitPrice),
			LineTotal:   paise(line.LineTotal()),
			GSTRate:     line.Product.GSTRate,
		}
		if line.Weight != nil {
			w := line.Weight.Value
			u := line.Weight.Unit
			item.Weight = &w
			item.WeightUnit = &u
		}
		saleItems = append(saleItems, item)
	}

	sale := &entity.Sale{
		UserID:         input.UserID,
		CustomerID:     customerID,
		InvoiceNo:      utils.GenerateInvoiceNo(time.Now()),
		Status:         enum.SaleStatusComplete,
		SubTotal:       paise(totals.SubTotal),
		Discount:       paise(totals.Discount),
		DiscountPct:    totals.DiscountPercent,
		Tax:            paise(totals.Tax),
		Total:          paise(totals.Total),
		PaymentMethod:  input.PaymentMethod,
		GSTEnabled:     input.GSTEnabled,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		CustomerMobile: strings.TrimSpace(input.CustomerMobile),
	}

	// One transaction: sale row, item snapshots and conditional stock
	// decrements. The billing cart already checked stock, but the
	// conditional update is what holds under concurrent checkouts.
	failedIDs, err := s.saleRepo.CreateWithStockDeduction(ctx, sale, saleItems, cart.StockDeductions())
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		var failedNames []string
		for _, id := range failedIDs {
			if product, exists := productMap[id]; exists {
				failedNames = append(failedNames, product.Name)
			}
		}
		return nil, apperror.NewInsufficientStockError(failedNames)
	}

	return s.saleRepo.GetWithItems(ctx, sale.ID)
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// GetSaleByInvoiceNo retrieves a sale by its invoice number
func (s *SaleService) GetSaleByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return s.saleRepo.GetWithItems(ctx, sale.ID)
}

// ListSales lists sales with filtering
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// CancelSale marks the sale cancelled and restores the deducted stock
// in one transaction. Already-cancelled sales are rejected.
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if sale.Status == enum.SaleStatusCancelled {
		return nil, apperror.NewBadRequestError("Sale is already cancelled")
	}

	increments := make(map[uuid.UUID]int64)
	for _, item := range sale.Items {
		increments[item.ProductID] += itemStockMilli(&item)
	}

	if err := s.saleRepo.CancelWithStockRestore(ctx, id, increments); err != nil {
		return nil, err
	}

	return s.saleRepo.GetWithItems(ctx, id)
}

// itemStockMilli computes the stock a sale item consumed, in
// thousandths of the base unit.
func itemStockMilli(item *entity.SaleItem) int64 {
	if item.Weight != nil && item.WeightUnit != nil {
		return billing.ToMilli(*item.Weight, *item.WeightUnit) * int64(item.Quantity)
	}
	return int64(item.Quantity) * 1000
}
