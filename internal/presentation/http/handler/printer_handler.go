package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/request"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles receipt printing HTTP requests
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// Status handles fetching the printer status
func (h *PrinterHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved successfully", h.printerService.GetStatus())
}

// TestPrint handles sending a test page to the printer
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint()
	if err != nil {
		// The receipt is still returned so the UI can render it when no
		// printer is attached.
		response.OK(c, "Printer unavailable, returning receipt data", gin.H{
			"receipt":     receipt,
			"print_error": err.Error(),
		})
		return
	}

	response.OK(c, "Test page printed successfully", gin.H{"receipt": receipt})
}

// PrintReceipt handles printing a sale receipt
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	receipt, err := h.printerService.PrintSaleReceipt(c.Request.Context(), saleID)
	if err != nil {
		if receipt != nil {
			response.OK(c, "Printer unavailable, returning receipt data", gin.H{
				"receipt":     receipt,
				"print_error": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}

// GetReceipt handles fetching the receipt data for a sale without printing
func (h *PrinterHandler) GetReceipt(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	receipt, err := h.printerService.BuildReceipt(c.Request.Context(), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", gin.H{"receipt": receipt})
}

// DownloadInvoicePDF handles rendering a sale as an A4 invoice PDF
func (h *PrinterHandler) DownloadInvoicePDF(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	pdf, receipt, err := h.printerService.RenderSalePDF(c.Request.Context(), saleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", receipt.InvoiceNo)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/pdf", pdf)
}
