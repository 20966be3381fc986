package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/request"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
	"github.com/shopbill/shopbill-api/pkg/pagination"
)

// SaleHandler handles checkout and sales history HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create handles checkout
// @Summary Create sale
// @Description Record a checkout, deducting stock atomically
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateSaleRequest true "Checkout data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	items := make([]service.SaleItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
		}
		if item.WeightUnit != nil {
			wu, err := enum.ParseWeightUnit(*item.WeightUnit)
			if err != nil {
				response.BadRequest(c, err.Error())
				return
			}
			items[i].WeightUnit = &wu
		}
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		UserID:          *userID,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		DiscountPercent: req.DiscountPercent,
		GSTEnabled:      req.GSTEnabled,
		PaymentMethod:   enum.PaymentMethod(req.PaymentMethod),
		Items:           items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale recorded successfully", sale)
}

// List handles listing sales with filters
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}

	switch filter.Status {
	case "complete":
		status := enum.SaleStatusComplete
		params.Status = &status
	case "cancelled":
		status := enum.SaleStatusCancelled
		params.Status = &status
	}

	if filter.CustomerID != "" {
		custID, err := uuid.Parse(filter.CustomerID)
		if err == nil {
			params.CustomerID = &custID
		}
	}

	if filter.PaymentMethod != "" {
		method := enum.PaymentMethod(filter.PaymentMethod)
		params.PaymentMethod = &method
	}

	if filter.StartDate != "" {
		if startDate, err := time.Parse("2006-01-02", filter.StartDate); err == nil {
			params.StartDate = &startDate
		}
	}
	if filter.EndDate != "" {
		if endDate, err := time.Parse("2006-01-02", filter.EndDate); err == nil {
			params.EndDate = &endDate
		}
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get handles getting a single sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// GetByInvoiceNo handles invoice number lookups
func (h *SaleHandler) GetByInvoiceNo(c *gin.Context) {
	invoiceNo := c.Param("invoiceNo")
	if invoiceNo == "" {
		response.BadRequest(c, "Invoice number is required")
		return
	}

	sale, err := h.saleService.GetSaleByInvoiceNo(c.Request.Context(), invoiceNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Cancel handles cancelling a sale and restoring its stock
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale cancelled successfully", sale)
}
