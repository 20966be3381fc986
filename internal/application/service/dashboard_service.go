package service

import (
	"context"
	"time"

	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/internal/infrastructure/cache"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// dashboardCacheTTL keeps dashboard aggregates fresh enough for a
// counter screen that polls every minute.
const dashboardCacheTTL = 60 * time.Second

const (
	dashboardStatsCacheKey = "dashboard:stats"
	topProductsCacheKey    = "dashboard:top_products"
	categorySalesCacheKey  = "dashboard:category_sales"
	topCustomersCacheKey   = "dashboard:top_customers"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	saleRepo      repository.SaleRepository
	cache         cache.Cache
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	cache cache.Cache,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		saleRepo:      saleRepo,
		cache:         cache,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodayRevenue   float64                       `json:"today_revenue"`
	TodaySaleCount int                           `json:"today_sale_count"`
	MonthRevenue   float64                       `json:"month_revenue"`
	TotalRevenue   float64                       `json:"total_revenue"`
	TotalProducts  int64                         `json:"total_products"`
	TotalCustomers int64                         `json:"total_customers"`
	TotalSales     int64                         `json:"total_sales"`
	LowStockCount  int64                         `json:"low_stock_count"`
	DailySales     []repository.DailySalesResult `json:"daily_sales"`
}

// GetDashboardStats returns the headline numbers for the dashboard.
// Results are cached briefly since the counter UI polls this endpoint.
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	hit, err := s.cache.Get(ctx, dashboardStatsCacheKey, &cached)
	if err == nil && hit {
		return &cached, nil
	}

	stats := &DashboardStats{}

	countParams := &pagination.PaginationParams{Page: 1, PerPage: 1}

	_, productCount, err := s.productRepo.List(ctx, &repository.ProductFilterParams{Pagination: countParams})
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	_, customerCount, err := s.customerRepo.List(ctx, countParams, "")
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = customerCount

	_, saleCount, err := s.saleRepo.List(ctx, &repository.SaleFilterParams{Pagination: countParams})
	if err != nil {
		return nil, err
	}
	stats.TotalSales = saleCount

	lowStock, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(lowStock))

	totalRevenue, err := s.analyticsRepo.GetTotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = totalRevenue

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	monthRevenue, err := s.analyticsRepo.GetRevenueSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	stats.MonthRevenue = monthRevenue

	dailySales, err := s.analyticsRepo.GetDailySales(ctx, 7)
	if err != nil {
		return nil, err
	}
	stats.DailySales = dailySales

	for _, day := range dailySales {
		if !day.Date.Before(startOfDay) {
			stats.TodayRevenue = day.Revenue
			stats.TodaySaleCount = day.Count
		}
	}

	_ = s.cache.Set(ctx, dashboardStatsCacheKey, stats, dashboardCacheTTL)

	return stats, nil
}

// GetTopProducts returns the best selling products by revenue
func (s *DashboardService) GetTopProducts(ctx context.Context, limit int) ([]repository.TopProductResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var cached []repository.TopProductResult
	hit, err := s.cache.Get(ctx, topProductsCacheKey, &cached)
	if err == nil && hit && len(cached) >= limit {
		return cached[:limit], nil
	}

	results, err := s.analyticsRepo.GetTopProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, topProductsCacheKey, results, dashboardCacheTTL)

	return results, nil
}

// GetSalesByCategory returns sales aggregated by category
func (s *DashboardService) GetSalesByCategory(ctx context.Context) ([]repository.CategorySalesResult, error) {
	var cached []repository.CategorySalesResult
	hit, err := s.cache.Get(ctx, categorySalesCacheKey, &cached)
	if err == nil && hit {
		return cached, nil
	}

	results, err := s.analyticsRepo.GetSalesByCategory(ctx)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, categorySalesCacheKey, results, dashboardCacheTTL)

	return results, nil
}

// GetTopCustomers returns the highest spending customers
func (s *DashboardService) GetTopCustomers(ctx context.Context, limit int) ([]repository.TopCustomerResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var cached []repository.TopCustomerResult
	hit, err := s.cache.Get(ctx, topCustomersCacheKey, &cached)
	if err == nil && hit && len(cached) >= limit {
		return cached[:limit], nil
	}

	results, err := s.analyticsRepo.GetTopCustomers(ctx, limit)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, topCustomersCacheKey, results, dashboardCacheTTL)

	return results, nil
}
