package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles fetching dashboard statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// GetTopProducts handles fetching the best selling products
func (h *DashboardHandler) GetTopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.dashboardService.GetTopProducts(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", results)
}

// GetSalesByCategory handles fetching sales grouped by category
func (h *DashboardHandler) GetSalesByCategory(c *gin.Context) {
	results, err := h.dashboardService.GetSalesByCategory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category sales retrieved successfully", results)
}

// GetTopCustomers handles fetching the highest spending customers
func (h *DashboardHandler) GetTopCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.dashboardService.GetTopCustomers(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top customers retrieved successfully", results)
}
