package repository

import (
	"context"
	"database/sql"
	"time"

	domainRepo "github.com/shopbill/shopbill-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id as product_id,
			p.name as product_name,
			COALESCE(SUM(si.quantity), 0) as quantity_sold,
			COALESCE(SUM(si.line_total), 0) / 100.0 as revenue
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.deleted_at IS NULL
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT ?
	`, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetSalesByCategory(ctx context.Context) ([]domainRepo.CategorySalesResult, error) {
	var results []domainRepo.CategorySalesResult

	// Total first, for percentage calculation
	var totalSales float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(si.line_total), 0) / 100.0
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.deleted_at IS NULL
	`).Scan(&totalSales).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(c.id, '00000000-0000-0000-0000-000000000000') as category_id,
			COALESCE(c.name, 'Uncategorized') as category_name,
			COALESCE(SUM(si.line_total), 0) / 100.0 as total_sales,
			COUNT(DISTINCT s.id) as sale_count
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.deleted_at IS NULL
		GROUP BY c.id, c.name
		ORDER BY total_sales DESC
	`).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	for i := range results {
		if totalSales > 0 {
			results[i].Percentage = (results[i].TotalSales / totalSales) * 100
		}
	}

	return results, nil
}

func (r *analyticsRepository) GetTopCustomers(ctx context.Context, limit int) ([]domainRepo.TopCustomerResult, error) {
	var results []domainRepo.TopCustomerResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id as customer_id,
			c.name as customer_name,
			COALESCE(SUM(s.total), 0) / 100.0 as total_spent,
			COUNT(s.id) as sale_count
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.status = 0 AND s.deleted_at IS NULL AND s.customer_id IS NOT NULL
		GROUP BY c.id, c.name
		ORDER BY total_spent DESC
		LIMIT ?
	`, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, days int) ([]domainRepo.DailySalesResult, error) {
	results := make([]domainRepo.DailySalesResult, 0, days)
	now := time.Now()

	// One row per day even when no sales happened that day
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var row struct {
			Revenue sql.NullFloat64
			Count   int
		}
		err := r.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(total), 0) / 100.0 as revenue, COUNT(*) as count
			FROM sales
			WHERE status = 0 AND deleted_at IS NULL
			AND created_at >= ? AND created_at < ?
		`, startOfDay, endOfDay).Scan(&row).Error

		if err != nil {
			return nil, err
		}

		rev := 0.0
		if row.Revenue.Valid {
			rev = row.Revenue.Float64
		}

		results = append(results, domainRepo.DailySalesResult{
			Date:    startOfDay,
			Revenue: rev,
			Count:   row.Count,
		})
	}

	return results, nil
}

func (r *analyticsRepository) GetTotalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0) / 100.0
		FROM sales
		WHERE status = 0 AND deleted_at IS NULL
	`).Scan(&revenue).Error

	return revenue, err
}

func (r *analyticsRepository) GetRevenueSince(ctx context.Context, t time.Time) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0) / 100.0
		FROM sales
		WHERE status = 0 AND deleted_at IS NULL AND created_at >= ?
	`, t).Scan(&revenue).Error

	return revenue, err
}
