package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/repository"
	"github.com/shopbill/shopbill-api/internal/invoice"
	"github.com/shopbill/shopbill-api/pkg/apperror"
	"github.com/shopbill/shopbill-api/pkg/printer"
)

// PrinterService composes receipts from sales and sends them to the
// configured thermal printer. PDF rendering goes through the same
// Receipt value so both outputs always agree.
type PrinterService struct {
	printer      printer.Printer
	saleRepo     repository.SaleRepository
	settingsRepo repository.SettingsRepository
	printerType  string
	charWidth    int
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	p printer.Printer,
	saleRepo repository.SaleRepository,
	settingsRepo repository.SettingsRepository,
	printerType string,
	charWidth int,
) *PrinterService {
	if charWidth <= 0 {
		charWidth = 48 // 80mm paper
	}
	return &PrinterService{
		printer:      p,
		saleRepo:     saleRepo,
		settingsRepo: settingsRepo,
		printerType:  printerType,
		charWidth:    charWidth,
	}
}

// PrinterStatus returns the current printer status information
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "" && s.printerType != "null" && s.printerType != "none",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer. The receipt is returned
// so the handler can show it as JSON when no printer is attached.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			ShopName: "PRINTER TEST",
			Address:  "Test Address",
			Phone:    "+91 00000 00000",
		},
		InvoiceNo: "TEST-001",
		Date:      "Test Date",
		Cashier:   "System",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Qty: "1", UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Qty: "2", UnitPrice: 5.00, Total: 10.00},
		},
		SubTotal: 20.00,
		Total:    20.00,
		Footer:   "Thank you, visit again!",
	}

	data := s.FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// BuildReceipt composes a printable receipt from a sale and the shop
// profile. It never touches the printer.
func (s *PrinterService) BuildReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		InvoiceNo:     sale.InvoiceNo,
		Date:          sale.CreatedAt.Format("02 Jan 2006 15:04"),
		PaymentMethod: string(sale.PaymentMethod),
		SubTotal:      float64(sale.SubTotal) / 100,
		Discount:      float64(sale.Discount) / 100,
		Tax:           float64(sale.Tax) / 100,
		GSTEnabled:    sale.GSTEnabled,
		Total:         float64(sale.Total) / 100,
	}

	if settings != nil {
		receipt.Header.ShopName = settings.ShopName
		if settings.ShopAddress != nil {
			receipt.Header.Address = *settings.ShopAddress
		}
		if settings.ShopPhone != nil {
			receipt.Header.Phone = *settings.ShopPhone
		}
		if settings.GSTNumber != nil {
			receipt.Header.GSTNumber = *settings.GSTNumber
		}
		receipt.Footer = settings.ReceiptFooter
	}
	if receipt.Header.ShopName == "" {
		receipt.Header.ShopName = "My Shop"
	}

	if sale.Customer != nil {
		receipt.Customer = sale.Customer.Name
		receipt.Mobile = sale.Customer.Mobile
	} else {
		receipt.Customer = sale.CustomerName
		receipt.Mobile = sale.CustomerMobile
	}

	for _, item := range sale.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.ProductName,
			Qty:       formatItemQty(&item),
			UnitPrice: float64(item.UnitPrice) / 100,
			Total:     float64(item.LineTotal) / 100,
			GSTRate:   item.GSTRate,
		})
	}

	return receipt, nil
}

// formatItemQty renders the quantity column: plain counts for unit
// lines, "1.500 kg" style for weight lines.
func formatItemQty(item *entity.SaleItem) string {
	if item.Weight != nil && item.WeightUnit != nil {
		qty := fmt.Sprintf("%.3f %s", *item.Weight, *item.WeightUnit)
		if item.Quantity > 1 {
			qty = strconv.Itoa(item.Quantity) + " x " + qty
		}
		return qty
	}
	return strconv.Itoa(item.Quantity)
}

// PrintSaleReceipt builds the receipt for a sale and prints it
func (s *PrinterService) PrintSaleReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	data := s.FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// RenderSalePDF builds the receipt for a sale and renders it as an A4
// invoice PDF.
func (s *PrinterService) RenderSalePDF(ctx context.Context, saleID uuid.UUID) ([]byte, *entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	currency := "INR"
	if settings, err := s.settingsRepo.Get(ctx); err == nil && settings != nil && settings.Currency != "" {
		currency = settings.Currency
	}

	pdf, err := invoice.RenderPDF(receipt, currency)
	if err != nil {
		return nil, nil, err
	}

	return pdf, receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes
func (s *PrinterService) FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewBuilder(s.charWidth)

	// Header
	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.FontDouble).
		Line(r.Header.ShopName).
		Size(printer.FontNormal).
		Bold(false)

	if r.Header.Address != "" {
		doc.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Line(r.Header.Phone)
	}
	if r.Header.GSTNumber != "" {
		doc.Linef("GSTIN: %s", r.Header.GSTNumber)
	}

	doc.Align(printer.AlignLeft).
		Divider('-')

	// Invoice info
	doc.LabelAmount("Invoice:", r.InvoiceNo).
		LabelAmount("Date:", r.Date)

	if r.Cashier != "" {
		doc.LabelAmount("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.LabelAmount("Customer:", r.Customer)
	}
	if r.Mobile != "" {
		doc.LabelAmount("Mobile:", r.Mobile)
	}
	if r.PaymentMethod != "" {
		doc.LabelAmount("Payment:", r.PaymentMethod)
	}

	doc.Divider('-')

	// Items. Weight lines carry the weighed amount in the qty column.
	for _, item := range r.Items {
		doc.LabelAmount(item.Name, fmt.Sprintf("%.2f", item.Total))
		detail := fmt.Sprintf("  %s @ %.2f", item.Qty, item.UnitPrice)
		if r.GSTEnabled && item.GSTRate > 0 {
			detail += fmt.Sprintf(" (GST %g%%)", item.GSTRate)
		}
		doc.Line(detail)
	}

	doc.Divider('-')

	// Totals
	doc.LabelAmount("Subtotal:", fmt.Sprintf("%.2f", r.SubTotal))
	if r.Discount > 0 {
		doc.LabelAmount("Discount:", fmt.Sprintf("-%.2f", r.Discount))
	}
	if r.GSTEnabled && r.Tax > 0 {
		doc.LabelAmount("GST:", fmt.Sprintf("%.2f", r.Tax))
	}
	doc.Bold(true).
		LabelAmount("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		Bold(false)

	doc.Divider('-')

	// Footer
	footer := r.Footer
	if footer == "" {
		footer = "Thank you, visit again!"
	}
	doc.Align(printer.AlignCenter).
		Feed(1).
		Line(footer).
		Feed(1).
		Align(printer.AlignLeft)

	doc.Feed(3).
		PartialCut()

	return doc.Bytes()
}
