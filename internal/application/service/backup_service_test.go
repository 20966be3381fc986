package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
)

// fakeBackupRepo restores into the same in-memory stores the other
// fakes use. Mirroring the real repository, a restore is all or
// nothing: when failErr is set nothing is touched.
type fakeBackupRepo struct {
	products  *fakeProductRepo
	sales     *fakeSaleRepo
	customers *fakeCustomerRepo
	failErr   error
}

func (r *fakeBackupRepo) Restore(ctx context.Context, products []entity.Product, sales []entity.Sale, customers []entity.Customer) error {
	if r.failErr != nil {
		return r.failErr
	}

	r.customers.customers = make(map[uuid.UUID]*entity.Customer)
	for i := range customers {
		r.customers.Create(ctx, &customers[i])
	}
	r.products.products = make(map[uuid.UUID]*entity.Product)
	for i := range products {
		r.products.Create(ctx, &products[i])
	}
	return r.sales.CreateBatch(ctx, sales)
}

func newBackupServiceFixture() (*BackupService, *fakeBackupRepo, *fakeProductRepo, *fakeSaleRepo, *fakeCustomerRepo) {
	productRepo := newFakeProductRepo()
	saleRepo := newFakeSaleRepo(productRepo)
	customerRepo := newFakeCustomerRepo()
	backupRepo := &fakeBackupRepo{products: productRepo, sales: saleRepo, customers: customerRepo}
	return NewBackupService(backupRepo, productRepo, saleRepo, customerRepo), backupRepo, productRepo, saleRepo, customerRepo
}

func TestBackupExport(t *testing.T) {
	svc, _, productRepo, saleRepo, customerRepo := newBackupServiceFixture()
	ctx := context.Background()

	soap := unitProduct("Soap", 50, 10, 18)
	productRepo.Create(ctx, &soap)
	customerRepo.Create(ctx, &entity.Customer{Name: "Asha", Mobile: "9876543210"})
	saleRepo.CreateBatch(ctx, []entity.Sale{saleAt(time.Now(), 5000)})

	before := time.Now()
	backup, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(backup.Products) != 1 || backup.Products[0].Name != "Soap" {
		t.Errorf("products = %+v, want one Soap", backup.Products)
	}
	if len(backup.Sales) != 1 {
		t.Errorf("sales = %d, want 1", len(backup.Sales))
	}
	if len(backup.Customers) != 1 || backup.Customers[0].Mobile != "9876543210" {
		t.Errorf("customers = %+v, want one with mobile 9876543210", backup.Customers)
	}
	if backup.ExportDate.Before(before) {
		t.Errorf("export date = %v, want >= %v", backup.ExportDate, before)
	}
}

func TestBackupImportReplacesCatalogAndAppendsSales(t *testing.T) {
	svc, _, productRepo, saleRepo, customerRepo := newBackupServiceFixture()
	ctx := context.Background()

	// Pre-existing data that the import must replace or keep.
	stale := unitProduct("Old Soap", 10, 1, 0)
	productRepo.Create(ctx, &stale)
	customerRepo.Create(ctx, &entity.Customer{Name: "Old Customer", Mobile: "9000000000"})
	existingSale := saleAt(time.Now().Add(-time.Hour), 1000)
	saleRepo.CreateBatch(ctx, []entity.Sale{existingSale})

	rice := weightProduct("Rice", 100, enum.WeightUnitKg, 25, 5)
	restored := saleAt(time.Now(), 20000)
	err := svc.Import(ctx, &Backup{
		Products:  []entity.Product{rice},
		Sales:     []entity.Sale{restored},
		Customers: []entity.Customer{{ID: uuid.New(), Name: "Asha", Mobile: "9876543210"}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	products, _ := productRepo.All(ctx)
	if len(products) != 1 || products[0].Name != "Rice" {
		t.Errorf("products = %+v, want catalog replaced with Rice", products)
	}

	customers, _ := customerRepo.All(ctx)
	if len(customers) != 1 || customers[0].Name != "Asha" {
		t.Errorf("customers = %+v, want replaced with Asha", customers)
	}

	// Sales append; the pre-existing invoice survives.
	sales, _ := saleRepo.All(ctx)
	if len(sales) != 2 {
		t.Errorf("sales = %d, want 2 (existing + restored)", len(sales))
	}
}

func TestBackupImportRejectsEmptyDocument(t *testing.T) {
	svc, _, productRepo, _, _ := newBackupServiceFixture()
	ctx := context.Background()

	soap := unitProduct("Soap", 50, 10, 18)
	productRepo.Create(ctx, &soap)

	if got := appErrorCode(t, svc.Import(ctx, nil)); got != http.StatusBadRequest {
		t.Errorf("nil document error code = %d, want 400", got)
	}
	if got := appErrorCode(t, svc.Import(ctx, &Backup{})); got != http.StatusBadRequest {
		t.Errorf("empty document error code = %d, want 400", got)
	}

	// A rejected import must not wipe existing data.
	products, _ := productRepo.All(ctx)
	if len(products) != 1 {
		t.Errorf("products = %d, want 1 untouched", len(products))
	}
}

func TestBackupImportFailureLeavesDataUntouched(t *testing.T) {
	svc, backupRepo, productRepo, _, customerRepo := newBackupServiceFixture()
	ctx := context.Background()

	soap := unitProduct("Soap", 50, 10, 18)
	productRepo.Create(ctx, &soap)
	customerRepo.Create(ctx, &entity.Customer{Name: "Asha", Mobile: "9876543210"})

	backupRepo.failErr = errors.New("disk full")
	err := svc.Import(ctx, &Backup{
		Products: []entity.Product{unitProduct("Rice", 80, 5, 5)},
	})
	if err == nil {
		t.Fatal("expected the restore failure to surface")
	}

	products, _ := productRepo.All(ctx)
	customers, _ := customerRepo.All(ctx)
	if len(products) != 1 || products[0].Name != "Soap" || len(customers) != 1 {
		t.Errorf("failed import altered data: %d products, %d customers, want 1 Soap and 1 customer",
			len(products), len(customers))
	}
}

// TestBackupRoundTrip drives a backup through the same JSON encoding
// the export endpoint and import handler use. Exact paise and milli
// amounts must survive, not just entity counts.
func TestBackupRoundTrip(t *testing.T) {
	source, _, productRepo, saleRepo, customerRepo := newBackupServiceFixture()
	ctx := context.Background()

	soap := unitProduct("Soap", 50, 10, 18)
	productRepo.Create(ctx, &soap)
	customerRepo.Create(ctx, &entity.Customer{Name: "Asha", Mobile: "9876543210"})

	sale := saleAt(time.Now(), 34830)
	sale.SubTotal = 35000
	sale.Discount = 3500
	sale.Tax = 3330
	sale.PaymentMethod = enum.PaymentCash
	sale.Items = []entity.SaleItem{{
		ID:          uuid.New(),
		SaleID:      sale.ID,
		ProductID:   soap.ID,
		ProductName: "Soap",
		Quantity:    3,
		UnitPrice:   5000,
		LineTotal:   15000,
		GSTRate:     18,
	}}
	saleRepo.CreateBatch(ctx, []entity.Sale{sale})

	exported, err := source.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("marshal backup: %v", err)
	}
	var restored Backup
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal backup: %v", err)
	}

	target, _, targetProducts, targetSales, targetCustomers := newBackupServiceFixture()
	if err := target.Import(ctx, &restored); err != nil {
		t.Fatalf("Import: %v", err)
	}

	products, _ := targetProducts.All(ctx)
	sales, _ := targetSales.All(ctx)
	customers, _ := targetCustomers.All(ctx)
	if len(products) != 1 || len(sales) != 1 || len(customers) != 1 {
		t.Fatalf("restored shop = %d products, %d sales, %d customers, want 1 each",
			len(products), len(sales), len(customers))
	}

	got := products[0]
	if got.ID != soap.ID {
		t.Errorf("restored product ID = %s, want %s preserved", got.ID, soap.ID)
	}
	if got.PricePaise != 5000 {
		t.Errorf("restored price = %d paise, want 5000", got.PricePaise)
	}
	if got.StockMilli != 10000 {
		t.Errorf("restored stock = %d milli, want 10000", got.StockMilli)
	}
	if got.StockAlertMilli != soap.StockAlertMilli {
		t.Errorf("restored stock alert = %d milli, want %d", got.StockAlertMilli, soap.StockAlertMilli)
	}

	gotSale := sales[0]
	if gotSale.SubTotal != 35000 || gotSale.Discount != 3500 || gotSale.Tax != 3330 || gotSale.Total != 34830 {
		t.Errorf("restored sale = %d/%d/%d/%d paise, want 35000/3500/3330/34830",
			gotSale.SubTotal, gotSale.Discount, gotSale.Tax, gotSale.Total)
	}
	if gotSale.Status != enum.SaleStatusComplete {
		t.Errorf("restored status = %v, want complete", gotSale.Status)
	}
	if len(gotSale.Items) != 1 {
		t.Fatalf("restored items = %d, want 1", len(gotSale.Items))
	}
	if gotSale.Items[0].UnitPrice != 5000 || gotSale.Items[0].LineTotal != 15000 {
		t.Errorf("restored item = %d @ %d paise, want 15000 @ 5000",
			gotSale.Items[0].LineTotal, gotSale.Items[0].UnitPrice)
	}
}
