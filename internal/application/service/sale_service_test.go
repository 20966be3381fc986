package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// --- In-memory fakes ---

type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo(products ...entity.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	p := *product
	r.products[p.ID] = &p
	return nil
}

func (r *fakeProductRepo) CreateBatch(ctx context.Context, products []entity.Product) error {
	for i := range products {
		if err := r.Create(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	p := *product
	r.products[p.ID] = &p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	all, _ := r.All(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) All(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) stockMilli(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, ok := r.products[id]
	if !ok {
		t.Fatalf("product %s not in repo", id)
	}
	return p.StockMilli
}

type fakeSaleRepo struct {
	products *fakeProductRepo
	sales    map[uuid.UUID]*entity.Sale

	// depleted simulates another checkout draining these products
	// between the cart's stock check and the transaction.
	depleted map[uuid.UUID]bool
}

func newFakeSaleRepo(products *fakeProductRepo) *fakeSaleRepo {
	return &fakeSaleRepo{
		products: products,
		sales:    make(map[uuid.UUID]*entity.Sale),
		depleted: make(map[uuid.UUID]bool),
	}
}

func (r *fakeSaleRepo) CreateWithStockDeduction(ctx context.Context, sale *entity.Sale, items []entity.SaleItem, deductions map[uuid.UUID]int64) ([]uuid.UUID, error) {
	var failedIDs []uuid.UUID
	for id, amount := range deductions {
		p, ok := r.products.products[id]
		if !ok || r.depleted[id] || p.StockMilli < amount {
			failedIDs = append(failedIDs, id)
		}
	}
	if len(failedIDs) > 0 {
		return failedIDs, nil
	}

	for id, amount := range deductions {
		r.products.products[id].StockMilli -= amount
	}

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	stored := *sale
	stored.Items = make([]entity.SaleItem, len(items))
	for i, item := range items {
		item.ID = uuid.New()
		item.SaleID = sale.ID
		stored.Items[i] = item
	}
	r.sales[sale.ID] = &stored
	return nil, nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	return r.GetWithItems(ctx, id)
}

func (r *fakeSaleRepo) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	for _, s := range r.sales {
		if s.InvoiceNo == invoiceNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) List(ctx context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	all, _ := r.All(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeSaleRepo) ListRange(ctx context.Context, from, to time.Time) ([]entity.Sale, error) {
	var out []entity.Sale
	for _, s := range r.sales {
		if s.Status == enum.SaleStatusComplete && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) CancelWithStockRestore(ctx context.Context, id uuid.UUID, increments map[uuid.UUID]int64) error {
	s, ok := r.sales[id]
	if !ok {
		return apperror.NewNotFoundError("Sale")
	}
	s.Status = enum.SaleStatusCancelled
	for pid, amount := range increments {
		if p, ok := r.products.products[pid]; ok {
			p.StockMilli += amount
		}
	}
	return nil
}

func (r *fakeSaleRepo) All(ctx context.Context) ([]entity.Sale, error) {
	var out []entity.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSaleRepo) CreateBatch(ctx context.Context, sales []entity.Sale) error {
	for i := range sales {
		s := sales[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		r.sales[s.ID] = &s
	}
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
}

func newFakeCustomerRepo(customers ...entity.Customer) *fakeCustomerRepo {
	repo := &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
	for i := range customers {
		c := customers[i]
		repo.customers[c.ID] = &c
	}
	return repo
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	c := *customer
	r.customers[c.ID] = &c
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Mobile == mobile {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	c := *customer
	r.customers[c.ID] = &c
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	all, _ := r.All(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeCustomerRepo) All(ctx context.Context) ([]entity.Customer, error) {
	var out []entity.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

// --- Test data helpers ---

func unitProduct(name string, priceRupees float64, stockUnits int, gstRate float64) entity.Product {
	p := entity.Product{
		ID:      uuid.New(),
		Name:    name,
		Type:    enum.ProductTypeUnit,
		GSTRate: gstRate,
	}
	p.SetPriceRupees(priceRupees)
	p.StockMilli = int64(stockUnits) * 1000
	return p
}

func weightProduct(name string, pricePerBase float64, unit enum.WeightUnit, stockBase float64, gstRate float64) entity.Product {
	p := entity.Product{
		ID:         uuid.New(),
		Name:       name,
		Type:       enum.ProductTypeWeight,
		WeightUnit: &unit,
		GSTRate:    gstRate,
	}
	p.SetPriceRupees(pricePerBase)
	p.SetStockBaseUnits(stockBase)
	return p
}

func newSaleServiceFixture(products ...entity.Product) (*SaleService, *fakeSaleRepo, *fakeProductRepo, *fakeCustomerRepo) {
	productRepo := newFakeProductRepo(products...)
	saleRepo := newFakeSaleRepo(productRepo)
	customerRepo := newFakeCustomerRepo()
	return NewSaleService(saleRepo, productRepo, customerRepo), saleRepo, productRepo, customerRepo
}

func appErrorCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	return apperror.GetAppError(err).Code
}

// --- Tests ---

func TestCreateSaleWorkedExample(t *testing.T) {
	// One weight line (₹100/kg, 2 kg, qty 1, GST 5%) plus one unit
	// line (₹50, qty 3, GST 18%), 10% discount, GST on.
	rice := weightProduct("Rice", 100, enum.WeightUnitKg, 10, 5)
	soap := unitProduct("Soap", 50, 10, 18)
	svc, _, productRepo, _ := newSaleServiceFixture(rice, soap)

	kg := enum.WeightUnitKg
	weight := 2.0
	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		UserID:          uuid.New(),
		DiscountPercent: 10,
		GSTEnabled:      true,
		PaymentMethod:   enum.PaymentCash,
		Items: []SaleItemInput{
			{ProductID: rice.ID, Quantity: 1, Weight: &weight, WeightUnit: &kg},
			{ProductID: soap.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if sale.SubTotal != 35000 {
		t.Errorf("subtotal = %d paise, want 35000", sale.SubTotal)
	}
	if sale.Discount != 3500 {
		t.Errorf("discount = %d paise, want 3500", sale.Discount)
	}
	// tax = 200*0.9*0.05 + 150*0.9*0.18 = 9 + 24.3 rupees
	if sale.Tax != 3330 {
		t.Errorf("tax = %d paise, want 3330", sale.Tax)
	}
	if sale.Total != 34830 {
		t.Errorf("total = %d paise, want 34830", sale.Total)
	}
	if sale.Status != enum.SaleStatusComplete {
		t.Errorf("status = %v, want complete", sale.Status)
	}
	if !strings.HasPrefix(sale.InvoiceNo, "INV-") {
		t.Errorf("invoice no = %q, want INV- prefix", sale.InvoiceNo)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(sale.Items))
	}

	// Snapshots keep sale-time name and price.
	if sale.Items[0].ProductName != "Rice" || sale.Items[0].UnitPrice != 20000 {
		t.Errorf("rice snapshot = %q @ %d paise, want Rice @ 20000", sale.Items[0].ProductName, sale.Items[0].UnitPrice)
	}
	if sale.Items[1].LineTotal != 15000 {
		t.Errorf("soap line total = %d paise, want 15000", sale.Items[1].LineTotal)
	}

	// 2 kg off the rice, 3 units off the soap.
	if got := productRepo.stockMilli(t, rice.ID); got != 8000 {
		t.Errorf("rice stock = %d milli, want 8000", got)
	}
	if got := productRepo.stockMilli(t, soap.ID); got != 7000 {
		t.Errorf("soap stock = %d milli, want 7000", got)
	}
}

func TestCreateSaleRejectsBadInput(t *testing.T) {
	soap := unitProduct("Soap", 50, 10, 18)

	tests := []struct {
		name     string
		input    *CreateSaleInput
		wantCode int
	}{
		{
			name: "empty cart",
			input: &CreateSaleInput{
				PaymentMethod: enum.PaymentCash,
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown payment method",
			input: &CreateSaleInput{
				PaymentMethod: "cheque",
				Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown product",
			input: &CreateSaleInput{
				PaymentMethod: enum.PaymentCash,
				Items:         []SaleItemInput{{ProductID: uuid.New(), Quantity: 1}},
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "fully discounted sale has zero total",
			input: &CreateSaleInput{
				DiscountPercent: 100,
				PaymentMethod:   enum.PaymentCash,
				Items:           []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, saleRepo, _, _ := newSaleServiceFixture(soap)
			_, err := svc.CreateSale(context.Background(), tt.input)
			if got := appErrorCode(t, err); got != tt.wantCode {
				t.Errorf("error code = %d, want %d", got, tt.wantCode)
			}
			if len(saleRepo.sales) != 0 {
				t.Error("rejected checkout must not persist a sale")
			}
		})
	}
}

func TestCreateSaleInsufficientStockInCart(t *testing.T) {
	soap := unitProduct("Soap", 50, 2, 18)
	svc, saleRepo, productRepo, _ := newSaleServiceFixture(soap)

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PaymentMethod: enum.PaymentCash,
		Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 3}},
	})
	if got := appErrorCode(t, err); got != http.StatusConflict {
		t.Errorf("error code = %d, want 409", got)
	}
	if !strings.Contains(err.Error(), "Soap") {
		t.Errorf("error %q should name the product", err)
	}
	if len(saleRepo.sales) != 0 {
		t.Error("failed checkout must not persist a sale")
	}
	if got := productRepo.stockMilli(t, soap.ID); got != 2000 {
		t.Errorf("stock = %d milli, want 2000 untouched", got)
	}
}

func TestCreateSaleConcurrentDepletion(t *testing.T) {
	// The cart sees enough stock but the transaction's conditional
	// decrement fails, as if another checkout drained it in between.
	soap := unitProduct("Soap", 50, 5, 18)
	svc, saleRepo, _, _ := newSaleServiceFixture(soap)
	saleRepo.depleted[soap.ID] = true

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PaymentMethod: enum.PaymentCash,
		Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
	})
	if got := appErrorCode(t, err); got != http.StatusConflict {
		t.Errorf("error code = %d, want 409", got)
	}
	if !strings.Contains(err.Error(), "Soap") {
		t.Errorf("error %q should name the product", err)
	}
	if len(saleRepo.sales) != 0 {
		t.Error("rolled-back checkout must not persist a sale")
	}
}

func TestCreateSaleAggregatesStockAcrossLines(t *testing.T) {
	// Two lines of the same product must be checked against stock
	// together, not per line.
	soap := unitProduct("Soap", 50, 5, 0)
	svc, _, _, _ := newSaleServiceFixture(soap)

	_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PaymentMethod: enum.PaymentCash,
		Items: []SaleItemInput{
			{ProductID: soap.ID, Quantity: 3},
			{ProductID: soap.ID, Quantity: 3},
		},
	})
	if got := appErrorCode(t, err); got != http.StatusConflict {
		t.Errorf("error code = %d, want 409", got)
	}
}

func TestCreateSaleUpsertsCustomerByMobile(t *testing.T) {
	soap := unitProduct("Soap", 50, 100, 0)

	t.Run("existing mobile reuses customer", func(t *testing.T) {
		productRepo := newFakeProductRepo(soap)
		saleRepo := newFakeSaleRepo(productRepo)
		existing := entity.Customer{ID: uuid.New(), Name: "Asha", Mobile: "9876543210"}
		customerRepo := newFakeCustomerRepo(existing)
		svc := NewSaleService(saleRepo, productRepo, customerRepo)

		sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
			CustomerMobile: "9876543210",
			PaymentMethod:  enum.PaymentUPI,
			Items:          []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		if sale.CustomerID == nil || *sale.CustomerID != existing.ID {
			t.Errorf("customer ID = %v, want %s", sale.CustomerID, existing.ID)
		}
		if len(customerRepo.customers) != 1 {
			t.Errorf("customers = %d, want 1 (no duplicate)", len(customerRepo.customers))
		}
	})

	t.Run("new mobile creates walk-in customer", func(t *testing.T) {
		svc, _, _, customerRepo := newSaleServiceFixture(soap)

		sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
			CustomerMobile: "9000000001",
			PaymentMethod:  enum.PaymentCash,
			Items:          []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		if sale.CustomerID == nil {
			t.Fatal("expected a customer to be created")
		}
		created, _ := customerRepo.GetByID(context.Background(), *sale.CustomerID)
		if created == nil || created.Name != "Walk-in" || created.Mobile != "9000000001" {
			t.Errorf("created customer = %+v, want Walk-in / 9000000001", created)
		}
	})

	t.Run("no mobile leaves sale anonymous", func(t *testing.T) {
		svc, _, _, customerRepo := newSaleServiceFixture(soap)

		sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
			PaymentMethod: enum.PaymentCash,
			Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		if sale.CustomerID != nil {
			t.Errorf("customer ID = %v, want nil", sale.CustomerID)
		}
		if len(customerRepo.customers) != 0 {
			t.Errorf("customers = %d, want 0", len(customerRepo.customers))
		}
	})

	t.Run("unknown explicit customer is rejected", func(t *testing.T) {
		svc, _, _, _ := newSaleServiceFixture(soap)

		missing := uuid.New()
		_, err := svc.CreateSale(context.Background(), &CreateSaleInput{
			CustomerID:    &missing,
			PaymentMethod: enum.PaymentCash,
			Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
		})
		if got := appErrorCode(t, err); got != http.StatusNotFound {
			t.Errorf("error code = %d, want 404", got)
		}
	})
}

func TestCancelSaleRestoresStock(t *testing.T) {
	rice := weightProduct("Rice", 100, enum.WeightUnitKg, 10, 5)
	soap := unitProduct("Soap", 50, 10, 18)
	svc, _, productRepo, _ := newSaleServiceFixture(rice, soap)

	gram := enum.WeightUnitGram
	weight := 500.0
	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PaymentMethod: enum.PaymentCard,
		Items: []SaleItemInput{
			{ProductID: rice.ID, Quantity: 2, Weight: &weight, WeightUnit: &gram},
			{ProductID: soap.ID, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// 2 x 500 g off the rice, 4 units off the soap.
	if got := productRepo.stockMilli(t, rice.ID); got != 9000 {
		t.Fatalf("rice stock after sale = %d milli, want 9000", got)
	}
	if got := productRepo.stockMilli(t, soap.ID); got != 6000 {
		t.Fatalf("soap stock after sale = %d milli, want 6000", got)
	}

	cancelled, err := svc.CancelSale(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("CancelSale: %v", err)
	}
	if cancelled.Status != enum.SaleStatusCancelled {
		t.Errorf("status = %v, want cancelled", cancelled.Status)
	}

	if got := productRepo.stockMilli(t, rice.ID); got != 10000 {
		t.Errorf("rice stock after cancel = %d milli, want 10000", got)
	}
	if got := productRepo.stockMilli(t, soap.ID); got != 10000 {
		t.Errorf("soap stock after cancel = %d milli, want 10000", got)
	}

	// Cancelling twice must not restore stock twice.
	if _, err := svc.CancelSale(context.Background(), sale.ID); err == nil {
		t.Fatal("expected error cancelling an already cancelled sale")
	}
	if got := productRepo.stockMilli(t, soap.ID); got != 10000 {
		t.Errorf("soap stock after double cancel = %d milli, want 10000", got)
	}
}

func TestGetSaleNotFound(t *testing.T) {
	svc, _, _, _ := newSaleServiceFixture()

	_, err := svc.GetSale(context.Background(), uuid.New())
	if got := appErrorCode(t, err); got != http.StatusNotFound {
		t.Errorf("error code = %d, want 404", got)
	}

	_, err = svc.GetSaleByInvoiceNo(context.Background(), "INV-19700101-NOPE")
	if got := appErrorCode(t, err); got != http.StatusNotFound {
		t.Errorf("error code = %d, want 404", got)
	}
}

func TestGetSaleByInvoiceNo(t *testing.T) {
	soap := unitProduct("Soap", 50, 10, 0)
	svc, _, _, _ := newSaleServiceFixture(soap)

	sale, err := svc.CreateSale(context.Background(), &CreateSaleInput{
		PaymentMethod: enum.PaymentCash,
		Items:         []SaleItemInput{{ProductID: soap.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	got, err := svc.GetSaleByInvoiceNo(context.Background(), sale.InvoiceNo)
	if err != nil {
		t.Fatalf("GetSaleByInvoiceNo: %v", err)
	}
	if got.ID != sale.ID {
		t.Errorf("sale ID = %s, want %s", got.ID, sale.ID)
	}
	if len(got.Items) != 1 {
		t.Errorf("items = %d, want 1", len(got.Items))
	}
}
