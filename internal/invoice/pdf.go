package invoice

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
)

// RenderPDF renders an A4 invoice for the given receipt and returns the
// PDF bytes. Layout: shop header, invoice metadata, item table, totals
// block and footer line.
func RenderPDF(r *entity.Receipt, currency string) ([]byte, error) {
	if currency == "" {
		currency = "Rs."
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Shop header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.Header.ShopName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if r.Header.Address != "" {
		pdf.CellFormat(0, 5, r.Header.Address, "", 1, "C", false, 0, "")
	}
	if r.Header.Phone != "" {
		pdf.CellFormat(0, 5, "Phone: "+r.Header.Phone, "", 1, "C", false, 0, "")
	}
	if r.Header.GSTNumber != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+r.Header.GSTNumber, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: "+r.InvoiceNo, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+r.Date, "", 1, "R", false, 0, "")
	if r.Customer != "" {
		line := "Customer: " + r.Customer
		if r.Mobile != "" {
			line += " (" + r.Mobile + ")"
		}
		pdf.CellFormat(95, 6, line, "", 0, "L", false, 0, "")
	}
	if r.PaymentMethod != "" {
		pdf.CellFormat(95, 6, "Payment: "+r.PaymentMethod, "", 1, "R", false, 0, "")
	} else {
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Item table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Rate", "1", 0, "R", true, 0, "")
	if r.GSTEnabled {
		pdf.CellFormat(20, 8, "GST%", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")
	} else {
		pdf.CellFormat(55, 8, "Amount", "1", 1, "R", true, 0, "")
	}

	// Item rows
	pdf.SetFont("Helvetica", "", 10)
	for _, it := range r.Items {
		pdf.CellFormat(80, 7, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, it.Qty, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", it.UnitPrice), "1", 0, "R", false, 0, "")
		if r.GSTEnabled {
			pdf.CellFormat(20, 7, fmt.Sprintf("%.1f", it.GSTRate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 7, fmt.Sprintf("%.2f", it.Total), "1", 1, "R", false, 0, "")
		} else {
			pdf.CellFormat(55, 7, fmt.Sprintf("%.2f", it.Total), "1", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(4)

	// Totals block, right aligned
	writeTotal := func(label string, amount float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(125, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%s %.2f", currency, amount), "", 1, "R", false, 0, "")
	}

	writeTotal("Sub Total", r.SubTotal, false)
	if r.Discount > 0 {
		writeTotal("Discount", -r.Discount, false)
	}
	if r.GSTEnabled {
		writeTotal("GST", r.Tax, false)
	}
	writeTotal("Grand Total", r.Total, true)

	// Footer
	if r.Footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, r.Footer, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
