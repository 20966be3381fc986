package billing

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
)

const tolerance = 1e-9

func unitProduct(name string, priceRupees float64, stock int, gstRate float64) entity.Product {
	p := entity.Product{
		ID:      uuid.New(),
		Name:    name,
		Type:    enum.ProductTypeUnit,
		GSTRate: gstRate,
	}
	p.SetPriceRupees(priceRupees)
	p.StockMilli = int64(stock) * 1000
	return p
}

func weightProduct(name string, pricePerBase float64, unit enum.WeightUnit, stockBase float64, gstRate float64) entity.Product {
	p := entity.Product{
		ID:         uuid.New(),
		Name:       name,
		Type:       enum.ProductTypeWeight,
		WeightUnit: &unit,
		GSTRate:    gstRate,
	}
	p.SetPriceRupees(pricePerBase)
	p.SetStockBaseUnits(stockBase)
	return p
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestTotalsWorkedExample(t *testing.T) {
	// One weight line (₹100/kg, 2 kg, qty 1, GST 5%) plus one unit
	// line (₹50, qty 3, GST 18%), 10% discount, GST on.
	rice := weightProduct("Rice", 100, enum.WeightUnitKg, 10, 5)
	soap := unitProduct("Soap", 50, 10, 18)

	cart := NewCart()
	if _, err := cart.AddLine(rice, 1, &WeightAmount{Value: 2, Unit: enum.WeightUnitKg}); err != nil {
		t.Fatalf("add rice: %v", err)
	}
	if _, err := cart.AddLine(soap, 3, nil); err != nil {
		t.Fatalf("add soap: %v", err)
	}

	totals := cart.Totals(10, true)

	if !almostEqual(totals.SubTotal, 350) {
		t.Errorf("subtotal = %v, want 350", totals.SubTotal)
	}
	if !almostEqual(totals.Discount, 35) {
		t.Errorf("discount = %v, want 35", totals.Discount)
	}
	// tax = 200*0.9*0.05 + 150*0.9*0.18 = 9 + 24.3
	if !almostEqual(totals.Tax, 33.3) {
		t.Errorf("tax = %v, want 33.3", totals.Tax)
	}
	if !almostEqual(totals.Total, 348.3) {
		t.Errorf("total = %v, want 348.3", totals.Total)
	}
}

func TestTotalsIdentity(t *testing.T) {
	// total == subtotal - discount + tax for a variety of carts.
	tests := []struct {
		name       string
		discount   float64
		gstEnabled bool
	}{
		{"no discount with gst", 0, true},
		{"half discount with gst", 50, true},
		{"full discount with gst", 100, true},
		{"discount without gst", 25, false},
		{"clamped negative discount", -10, true},
		{"clamped excess discount", 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewCart()
			if _, err := cart.AddLine(unitProduct("A", 99.99, 100, 12), 7, nil); err != nil {
				t.Fatal(err)
			}
			if _, err := cart.AddLine(weightProduct("B", 33.33, enum.WeightUnitKg, 100, 5), 2, &WeightAmount{Value: 750, Unit: enum.WeightUnitGram}); err != nil {
				t.Fatal(err)
			}

			totals := cart.Totals(tt.discount, tt.gstEnabled)
			if !almostEqual(totals.Total, totals.SubTotal-totals.Discount+totals.Tax) {
				t.Fatalf("identity broken: total=%v subtotal=%v discount=%v tax=%v",
					totals.Total, totals.SubTotal, totals.Discount, totals.Tax)
			}
			if totals.DiscountPercent < 0 || totals.DiscountPercent > 100 {
				t.Fatalf("discount percent not clamped: %v", totals.DiscountPercent)
			}
			if !tt.gstEnabled && totals.Tax != 0 {
				t.Fatalf("tax should be zero when gst disabled, got %v", totals.Tax)
			}
		})
	}
}

func TestTotalsZeroDiscountUsesFullLineRates(t *testing.T) {
	cart := NewCart()
	if _, err := cart.AddLine(unitProduct("A", 100, 10, 18), 1, nil); err != nil {
		t.Fatal(err)
	}
	totals := cart.Totals(0, true)
	if !almostEqual(totals.Tax, 18) {
		t.Fatalf("tax = %v, want 18", totals.Tax)
	}
}

func TestAddLineAggregateStockAcrossLines(t *testing.T) {
	// Weight product with 5 kg of stock: 3 kg then 2.5 kg must fail,
	// 3 kg then 2 kg must succeed.
	flour := weightProduct("Flour", 40, enum.WeightUnitKg, 5, 0)

	cart := NewCart()
	if _, err := cart.AddLine(flour, 1, &WeightAmount{Value: 3, Unit: enum.WeightUnitKg}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := cart.AddLine(flour, 1, &WeightAmount{Value: 2.5, Unit: enum.WeightUnitKg})
	var insufficientErr *InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	if _, err := cart.AddLine(flour, 1, &WeightAmount{Value: 2, Unit: enum.WeightUnitKg}); err != nil {
		t.Fatalf("2 kg on top of 3 kg should fit in 5 kg stock: %v", err)
	}
}

func TestAddLineStockInSubUnits(t *testing.T) {
	// 500 g + 500 g fills exactly 1 kg of stock; one more gram fails.
	oil := weightProduct("Oil", 180, enum.WeightUnitLtr, 1, 5)

	cart := NewCart()
	if _, err := cart.AddLine(oil, 1, &WeightAmount{Value: 500, Unit: enum.WeightUnitMl}); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(oil, 1, &WeightAmount{Value: 500, Unit: enum.WeightUnitMl}); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(oil, 1, &WeightAmount{Value: 1, Unit: enum.WeightUnitMl}); err == nil {
		t.Fatal("expected stock to be exhausted at exactly 1 ltr")
	}
}

func TestAddLineUnitStock(t *testing.T) {
	soap := unitProduct("Soap", 50, 3, 18)

	cart := NewCart()
	if _, err := cart.AddLine(soap, 2, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(soap, 2, nil); err == nil {
		t.Fatal("2+2 should exceed stock of 3")
	}
	if _, err := cart.AddLine(soap, 1, nil); err != nil {
		t.Fatalf("2+1 should exactly fit stock of 3: %v", err)
	}
}

func TestAddLineValidation(t *testing.T) {
	soap := unitProduct("Soap", 50, 10, 18)
	rice := weightProduct("Rice", 60, enum.WeightUnitKg, 10, 5)

	cart := NewCart()
	if _, err := cart.AddLine(soap, 0, nil); err == nil {
		t.Error("quantity 0 should be rejected")
	}
	if _, err := cart.AddLine(soap, 1, &WeightAmount{Value: 1, Unit: enum.WeightUnitKg}); err == nil {
		t.Error("weight on a unit-type product should be rejected")
	}
	if _, err := cart.AddLine(rice, 1, nil); err == nil {
		t.Error("missing weight on a weight-type product should be rejected")
	}
	if _, err := cart.AddLine(rice, 1, &WeightAmount{Value: 500, Unit: enum.WeightUnitMl}); err == nil {
		t.Error("ml weight on a kg product should be rejected")
	}
}

func TestUpdateQuantity(t *testing.T) {
	soap := unitProduct("Soap", 50, 5, 18)

	cart := NewCart()
	line, err := cart.AddLine(soap, 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Raising within stock is fine; revalidation excludes the line's
	// own old amount before re-adding the new one.
	if err := cart.UpdateQuantity(line.ID, 5); err != nil {
		t.Fatalf("update to full stock: %v", err)
	}
	if err := cart.UpdateQuantity(line.ID, 6); err == nil {
		t.Fatal("update beyond stock should fail")
	}
	if got := cart.Lines()[0].Quantity; got != 5 {
		t.Fatalf("failed update must not change quantity, got %d", got)
	}

	// Zero or negative removes the line.
	if err := cart.UpdateQuantity(line.ID, 0); err != nil {
		t.Fatal(err)
	}
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty after removing only line")
	}

	if err := cart.UpdateQuantity(999, 1); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestUpdateQuantityCountsSiblingLines(t *testing.T) {
	flour := weightProduct("Flour", 40, enum.WeightUnitKg, 5, 0)

	cart := NewCart()
	first, err := cart.AddLine(flour, 1, &WeightAmount{Value: 2, Unit: enum.WeightUnitKg})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(flour, 1, &WeightAmount{Value: 2, Unit: enum.WeightUnitKg}); err != nil {
		t.Fatal(err)
	}

	// First line holds 2 kg; sibling holds 2 kg; raising the first to
	// qty 2 would need 4+2 = 6 kg against 5 kg of stock.
	if err := cart.UpdateQuantity(first.ID, 2); err == nil {
		t.Fatal("expected aggregate check to fail across sibling lines")
	}
}

func TestRemoveLine(t *testing.T) {
	soap := unitProduct("Soap", 50, 5, 18)

	cart := NewCart()
	line, err := cart.AddLine(soap, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	cart.RemoveLine(line.ID)
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty")
	}
	// Removing again is a no-op.
	cart.RemoveLine(line.ID)
}

func TestStockDeductionsGroupsByProduct(t *testing.T) {
	// The same product in two weight lines (1.5 kg and 0.5 kg) must
	// deduct exactly 2 kg once, not twice.
	flour := weightProduct("Flour", 40, enum.WeightUnitKg, 5, 0)
	soap := unitProduct("Soap", 50, 10, 18)

	cart := NewCart()
	if _, err := cart.AddLine(flour, 1, &WeightAmount{Value: 1.5, Unit: enum.WeightUnitKg}); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(flour, 1, &WeightAmount{Value: 500, Unit: enum.WeightUnitGram}); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.AddLine(soap, 3, nil); err != nil {
		t.Fatal(err)
	}

	deductions := cart.StockDeductions()
	if len(deductions) != 2 {
		t.Fatalf("expected 2 products in deductions, got %d", len(deductions))
	}
	if got := deductions[flour.ID]; got != 2000 {
		t.Fatalf("flour deduction = %d milli, want 2000", got)
	}
	if got := deductions[soap.ID]; got != 3000 {
		t.Fatalf("soap deduction = %d milli, want 3000", got)
	}
}

func TestWeightLinePriceBakedIntoUnitPrice(t *testing.T) {
	rice := weightProduct("Rice", 100, enum.WeightUnitKg, 10, 5)

	cart := NewCart()
	line, err := cart.AddLine(rice, 2, &WeightAmount{Value: 250, Unit: enum.WeightUnitGram})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(line.UnitPrice, 25) {
		t.Fatalf("unit price = %v, want 25 (₹100/kg × 0.25 kg)", line.UnitPrice)
	}
	if !almostEqual(line.LineTotal(), 50) {
		t.Fatalf("line total = %v, want 50", line.LineTotal())
	}
}
