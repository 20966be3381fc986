package service

import (
	"context"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

func saleAt(createdAt time.Time, totalPaise int64) entity.Sale {
	return entity.Sale{
		ID:        uuid.New(),
		InvoiceNo: "INV-" + createdAt.Format("20060102") + "-" + uuid.New().String()[:8],
		Total:     totalPaise,
		CreatedAt: createdAt,
	}
}

func TestResolveWindow(t *testing.T) {
	// Wednesday 15 July 2026, 14:30 IST.
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.July, 15, 14, 30, 0, 0, loc)

	tests := []struct {
		name     string
		window   string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "day",
			window:   WindowDay,
			wantFrom: time.Date(2026, time.July, 15, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2026, time.July, 16, 0, 0, 0, 0, loc),
		},
		{
			name:     "empty window defaults to day",
			window:   "",
			wantFrom: time.Date(2026, time.July, 15, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2026, time.July, 16, 0, 0, 0, 0, loc),
		},
		{
			name:     "week starts monday",
			window:   WindowWeek,
			wantFrom: time.Date(2026, time.July, 13, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2026, time.July, 20, 0, 0, 0, 0, loc),
		},
		{
			name:     "month",
			window:   WindowMonth,
			wantFrom: time.Date(2026, time.July, 1, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2026, time.August, 1, 0, 0, 0, 0, loc),
		},
		{
			name:     "year",
			window:   WindowYear,
			wantFrom: time.Date(2026, time.January, 1, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2027, time.January, 1, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ResolveWindow(tt.window, now, nil, nil)
			if err != nil {
				t.Fatalf("ResolveWindow: %v", err)
			}
			if !from.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(tt.wantTo) {
				t.Errorf("to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}

func TestResolveWindowWeekOnMonday(t *testing.T) {
	// A Monday must resolve to itself as the week start.
	now := time.Date(2026, time.July, 13, 9, 0, 0, 0, time.UTC)
	from, to, err := ResolveWindow(WindowWeek, now, nil, nil)
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if !from.Equal(time.Date(2026, time.July, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want Monday 13 July", from)
	}
	if to.Sub(from) != 7*24*time.Hour {
		t.Errorf("window length = %v, want 7 days", to.Sub(from))
	}
}

func TestResolveWindowCustom(t *testing.T) {
	now := time.Now()
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	gotFrom, gotTo, err := ResolveWindow(WindowCustom, now, &from, &to)
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if !gotFrom.Equal(from) || !gotTo.Equal(to) {
		t.Errorf("window = [%v, %v), want [%v, %v)", gotFrom, gotTo, from, to)
	}

	tests := []struct {
		name string
		from *time.Time
		to   *time.Time
	}{
		{"missing both", nil, nil},
		{"missing to", &from, nil},
		{"missing from", nil, &to},
		{"from equals to", &from, &from},
		{"from after to", &to, &from},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveWindow(WindowCustom, now, tt.from, tt.to)
			if got := appErrorCode(t, err); got != http.StatusBadRequest {
				t.Errorf("error code = %d, want 400", got)
			}
		})
	}
}

func TestResolveWindowUnknown(t *testing.T) {
	_, _, err := ResolveWindow("fortnight", time.Now(), nil, nil)
	if got := appErrorCode(t, err); got != http.StatusBadRequest {
		t.Errorf("error code = %d, want 400", got)
	}
}

func TestBuildSalesReportDayBuckets(t *testing.T) {
	loc := time.UTC
	from := time.Date(2026, time.July, 13, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)

	sales := []entity.Sale{
		saleAt(from.Add(10*time.Hour), 10000),                  // Mon, ₹100
		saleAt(from.Add(12*time.Hour), 20000),                  // Mon, ₹200
		saleAt(from.AddDate(0, 0, 2).Add(9*time.Hour), 50000),  // Wed, ₹500
		saleAt(from.Add(-time.Hour), 99900),                    // before window
		saleAt(to, 99900),                                      // at to, excluded (half-open)
		saleAt(from.AddDate(0, 0, 6).Add(23*time.Hour), 30000), // Sun, ₹300
	}

	report := BuildSalesReport(sales, from, to, BucketDay)

	if report.SaleCount != 4 {
		t.Errorf("sale count = %d, want 4", report.SaleCount)
	}
	if report.TotalRevenue != 1100 {
		t.Errorf("total revenue = %v, want 1100", report.TotalRevenue)
	}
	if report.AverageSale != 275 {
		t.Errorf("average sale = %v, want 275", report.AverageSale)
	}

	// Every day of the week appears, empty days included.
	if len(report.Points) != 7 {
		t.Fatalf("points = %d, want 7", len(report.Points))
	}
	wantRevenue := []float64{300, 0, 500, 0, 0, 0, 300}
	wantCounts := []int{2, 0, 1, 0, 0, 0, 1}
	for i, p := range report.Points {
		if p.Revenue != wantRevenue[i] {
			t.Errorf("point %d (%s) revenue = %v, want %v", i, p.Label, p.Revenue, wantRevenue[i])
		}
		if p.Count != wantCounts[i] {
			t.Errorf("point %d (%s) count = %d, want %d", i, p.Label, p.Count, wantCounts[i])
		}
	}
	if report.Points[0].Label != "13 Jul" {
		t.Errorf("first label = %q, want %q", report.Points[0].Label, "13 Jul")
	}
}

func TestBuildSalesReportHourBuckets(t *testing.T) {
	loc := time.UTC
	from := time.Date(2026, time.July, 15, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	sales := []entity.Sale{
		saleAt(from.Add(9*time.Hour+15*time.Minute), 5000),
		saleAt(from.Add(9*time.Hour+45*time.Minute), 7000),
		saleAt(from.Add(18*time.Hour), 8000),
	}

	report := BuildSalesReport(sales, from, to, "")

	// A one-day window defaults to hourly buckets.
	if report.Bucket != BucketHour {
		t.Fatalf("bucket = %q, want hour", report.Bucket)
	}
	if len(report.Points) != 24 {
		t.Fatalf("points = %d, want 24", len(report.Points))
	}
	nine := report.Points[9]
	if nine.Label != "09:00" || nine.Revenue != 120 || nine.Count != 2 {
		t.Errorf("09:00 bucket = %q %v/%d, want 09:00 120/2", nine.Label, nine.Revenue, nine.Count)
	}
	if nine.Average != 60 {
		t.Errorf("09:00 average = %v, want 60", nine.Average)
	}
}

func TestBuildSalesReportMonthBuckets(t *testing.T) {
	loc := time.UTC
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)

	sales := []entity.Sale{
		saleAt(time.Date(2026, time.March, 5, 10, 0, 0, 0, loc), 100000),
		saleAt(time.Date(2026, time.March, 20, 10, 0, 0, 0, loc), 200000),
		saleAt(time.Date(2026, time.November, 1, 0, 0, 0, 0, loc), 50000),
	}

	report := BuildSalesReport(sales, from, to, "")

	// A one-year window defaults to monthly buckets.
	if report.Bucket != BucketMonth {
		t.Fatalf("bucket = %q, want month", report.Bucket)
	}
	if len(report.Points) != 12 {
		t.Fatalf("points = %d, want 12", len(report.Points))
	}
	march := report.Points[2]
	if march.Label != "Mar 2026" || march.Revenue != 3000 || march.Count != 2 {
		t.Errorf("march = %q %v/%d, want Mar 2026 3000/2", march.Label, march.Revenue, march.Count)
	}
}

func TestBuildSalesReportEmptyWindow(t *testing.T) {
	from := time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)
	report := BuildSalesReport(nil, from, from.AddDate(0, 0, 1), BucketHour)

	if report.SaleCount != 0 || report.TotalRevenue != 0 || report.AverageSale != 0 {
		t.Errorf("empty report = %d sales, %v revenue, %v average, want zeros",
			report.SaleCount, report.TotalRevenue, report.AverageSale)
	}
	if len(report.Points) != 24 {
		t.Errorf("points = %d, want 24 empty buckets", len(report.Points))
	}
}

func TestGetSalesReport(t *testing.T) {
	soap := unitProduct("Soap", 123.45, 100, 0)
	productRepo := newFakeProductRepo(soap)
	saleRepo := newFakeSaleRepo(productRepo)
	svc := NewReportService(saleRepo)

	now := time.Now()
	saleRepo.CreateBatch(context.Background(), []entity.Sale{
		saleAt(now, 12345),
		saleAt(now.Add(-time.Minute), 20000),
	})

	report, err := svc.GetSalesReport(context.Background(), &SalesReportInput{Window: WindowDay})
	if err != nil {
		t.Fatalf("GetSalesReport: %v", err)
	}
	if report.SaleCount != 2 {
		t.Errorf("sale count = %d, want 2", report.SaleCount)
	}
	if math.Abs(report.TotalRevenue-323.45) > 1e-9 {
		t.Errorf("total revenue = %v, want 323.45", report.TotalRevenue)
	}
}

func TestExportSalesReportXLSX(t *testing.T) {
	productRepo := newFakeProductRepo()
	saleRepo := newFakeSaleRepo(productRepo)
	svc := NewReportService(saleRepo)

	saleRepo.CreateBatch(context.Background(), []entity.Sale{
		saleAt(time.Now(), 15000),
	})

	data, filename, err := svc.ExportSalesReportXLSX(context.Background(), &SalesReportInput{Window: WindowDay})
	if err != nil {
		t.Fatalf("ExportSalesReportXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Error("workbook is empty")
	}
	if !strings.HasPrefix(filename, "sales-report-") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %q, want sales-report-*.xlsx", filename)
	}
}
