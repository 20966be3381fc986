package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
)

// ReportHandler handles sales report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// parseReportInput reads the window/bucket query parameters
func parseReportInput(c *gin.Context) *service.SalesReportInput {
	input := &service.SalesReportInput{
		Window: c.DefaultQuery("window", service.WindowDay),
		Bucket: c.Query("bucket"),
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			input.From = &from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			// The to date is inclusive in the query string
			end := to.AddDate(0, 0, 1)
			input.To = &end
		}
	}

	return input
}

// GetSalesReport handles the aggregated sales report
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	report, err := h.reportService.GetSalesReport(c.Request.Context(), parseReportInput(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales report retrieved successfully", report)
}

// ExportSalesReport handles XLSX export of the sales report
func (h *ReportHandler) ExportSalesReport(c *gin.Context) {
	data, filename, err := h.reportService.ExportSalesReportXLSX(c.Request.Context(), parseReportInput(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
