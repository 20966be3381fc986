package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

// Report windows and bucket sizes accepted by the sales report.
const (
	WindowDay    = "day"
	WindowWeek   = "week"
	WindowMonth  = "month"
	WindowYear   = "year"
	WindowCustom = "custom"

	BucketHour  = "hour"
	BucketDay   = "day"
	BucketMonth = "month"
)

// ReportService aggregates completed sales over a time window for
// charts and exports. Aggregation itself is pure; only the sale fetch
// touches the database.
type ReportService struct {
	saleRepo repository.SaleRepository
}

// NewReportService creates a new report service
func NewReportService(saleRepo repository.SaleRepository) *ReportService {
	return &ReportService{saleRepo: saleRepo}
}

// SalesReportInput selects the window and bucket size
type SalesReportInput struct {
	Window string
	Bucket string
	From   *time.Time // custom window only
	To     *time.Time // custom window only
}

// BucketPoint is one aggregated chart point
type BucketPoint struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Revenue float64   `json:"revenue"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
}

// SalesReport is the aggregated report over a window
type SalesReport struct {
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	Bucket       string        `json:"bucket"`
	TotalRevenue float64       `json:"total_revenue"`
	SaleCount    int           `json:"sale_count"`
	AverageSale  float64       `json:"average_sale"`
	Points       []BucketPoint `json:"points"`
}

// ResolveWindow converts a named window into a half-open [from, to)
// range anchored at now. Custom windows take the given bounds.
func ResolveWindow(window string, now time.Time, from, to *time.Time) (time.Time, time.Time, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch window {
	case WindowDay, "":
		return startOfDay, startOfDay.AddDate(0, 0, 1), nil
	case WindowWeek:
		// Weeks start on Monday
		offset := (int(startOfDay.Weekday()) + 6) % 7
		start := startOfDay.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case WindowMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), nil
	case WindowYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), nil
	case WindowCustom:
		if from == nil || to == nil {
			return time.Time{}, time.Time{}, apperror.NewBadRequestError("Custom window requires from and to dates")
		}
		if !from.Before(*to) {
			return time.Time{}, time.Time{}, apperror.NewBadRequestError("From date must be before to date")
		}
		return *from, *to, nil
	default:
		return time.Time{}, time.Time{}, apperror.NewBadRequestError(fmt.Sprintf("Unknown report window %q", window))
	}
}

// defaultBucket picks a bucket size that suits the window length
func defaultBucket(from, to time.Time) string {
	span := to.Sub(from)
	switch {
	case span <= 48*time.Hour:
		return BucketHour
	case span <= 32*24*time.Hour:
		return BucketDay
	default:
		return BucketMonth
	}
}

// bucketStart truncates t to the start of its bucket
func bucketStart(t time.Time, bucket string) time.Time {
	switch bucket {
	case BucketHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// bucketNext returns the start of the bucket after start
func bucketNext(start time.Time, bucket string) time.Time {
	switch bucket {
	case BucketHour:
		return start.Add(time.Hour)
	case BucketMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// bucketLabel formats a bucket start for chart axes
func bucketLabel(start time.Time, bucket string) string {
	switch bucket {
	case BucketHour:
		return start.Format("15:04")
	case BucketMonth:
		return start.Format("Jan 2006")
	default:
		return start.Format("02 Jan")
	}
}

// BuildSalesReport aggregates sales into buckets over [from, to). Every
// bucket in the window appears in the output, empty ones included, so
// charts show gaps instead of skipping them.
func BuildSalesReport(sales []entity.Sale, from, to time.Time, bucket string) *SalesReport {
	switch bucket {
	case BucketHour, BucketDay, BucketMonth:
	default:
		bucket = defaultBucket(from, to)
	}

	report := &SalesReport{
		From:   from,
		To:     to,
		Bucket: bucket,
	}

	revenue := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, sale := range sales {
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		start := bucketStart(sale.CreatedAt, bucket)
		revenue[start] += sale.TotalRupees()
		counts[start]++
		report.TotalRevenue += sale.TotalRupees()
		report.SaleCount++
	}
	if report.SaleCount > 0 {
		report.AverageSale = report.TotalRevenue / float64(report.SaleCount)
	}

	for start := bucketStart(from, bucket); start.Before(to); start = bucketNext(start, bucket) {
		point := BucketPoint{
			Label:   bucketLabel(start, bucket),
			Start:   start,
			Revenue: revenue[start],
			Count:   counts[start],
		}
		if point.Count > 0 {
			point.Average = point.Revenue / float64(point.Count)
		}
		report.Points = append(report.Points, point)
	}

	return report
}

// GetSalesReport fetches completed sales in the window and aggregates them
func (s *ReportService) GetSalesReport(ctx context.Context, input *SalesReportInput) (*SalesReport, error) {
	from, to, err := ResolveWindow(input.Window, time.Now(), input.From, input.To)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return BuildSalesReport(sales, from, to, input.Bucket), nil
}

// ExportSalesReportXLSX renders the sales in the window as an Excel
// workbook with one row per sale and a summary block.
func (s *ReportService) ExportSalesReportXLSX(ctx context.Context, input *SalesReportInput) ([]byte, string, error) {
	from, to, err := ResolveWindow(input.Window, time.Now(), input.From, input.To)
	if err != nil {
		return nil, "", err
	}

	sales, err := s.saleRepo.ListRange(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Invoice No", "Date", "Customer", "Mobile", "Payment", "Items", "Subtotal", "Discount", "GST", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, sale := range sales {
		customer := sale.CustomerName
		mobile := sale.CustomerMobile
		if sale.Customer != nil {
			customer = sale.Customer.Name
			mobile = sale.Customer.Mobile
		}
		values := []interface{}{
			sale.InvoiceNo,
			sale.CreatedAt.Format("2006-01-02 15:04"),
			customer,
			mobile,
			string(sale.PaymentMethod),
			len(sale.Items),
			float64(sale.SubTotal) / 100,
			float64(sale.Discount) / 100,
			float64(sale.Tax) / 100,
			float64(sale.Total) / 100,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	report := BuildSalesReport(sales, from, to, input.Bucket)
	summaryRow := len(sales) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total sales")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), report.SaleCount)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Total revenue")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), report.TotalRevenue)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+2), "Average sale")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+2), report.AverageSale)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("sales-report-%s-to-%s.xlsx", from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	return buf.Bytes(), filename, nil
}
