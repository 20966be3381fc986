// Package billing implements the cart and totals computation for a
// billing session: per-line pricing (including weight-based pricing),
// aggregate stock validation across lines, discount and per-line GST.
// It is pure in-memory computation with no I/O; the sale service
// revalidates stock transactionally at checkout.
package billing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/shopbill-api/internal/domain/entity"
	"github.com/shopbill/shopbill-api/internal/domain/enum"
)

// ErrLineNotFound is returned when a line ID does not exist in the cart.
var ErrLineNotFound = errors.New("billing: cart line not found")

// InsufficientStockError reports that a cart operation would reserve
// more of a product than is in stock, counting every line that
// references the product. Amounts are in base units.
type InsufficientStockError struct {
	ProductName string
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %.3f, available %.3f", e.ProductName, e.Requested, e.Available)
}

// Line is one cart entry. Weight is nil for unit-type lines and set
// for weight-type lines; UnitPrice is resolved once at add time, so a
// weight line's UnitPrice already includes price-per-base-unit times
// the weighed amount and LineTotal is always UnitPrice * Quantity.
type Line struct {
	ID        int            `json:"id"`
	Product   entity.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	Weight    *WeightAmount  `json:"weight,omitempty"`
	UnitPrice float64        `json:"unit_price"` // rupees
}

// LineTotal returns the line amount in rupees.
func (l *Line) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// baseMilliPerQty is the stock consumed per quantity, in thousandths
// of the product's base unit.
func (l *Line) baseMilliPerQty() int64 {
	if l.Weight != nil {
		return ToMilli(l.Weight.Value, l.Weight.Unit)
	}
	return 1000 // one unit
}

// ReservedMilli is the total stock this line reserves.
func (l *Line) ReservedMilli() int64 {
	return l.baseMilliPerQty() * int64(l.Quantity)
}

// Cart accumulates lines for a single billing session. It is not safe
// for concurrent use; a session is owned by one request at a time.
type Cart struct {
	lines  []Line
	nextID int
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{nextID: 1}
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return c.lines
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// reservedMilli sums the stock reserved for a product across all
// lines, excluding the line with ID excludeID (0 excludes nothing).
func (c *Cart) reservedMilli(productID uuid.UUID, excludeID int) int64 {
	var total int64
	for i := range c.lines {
		l := &c.lines[i]
		if l.Product.ID == productID && l.ID != excludeID {
			total += l.ReservedMilli()
		}
	}
	return total
}

// checkStock fails if reserving addMilli of the product on top of what
// the other lines already hold would exceed the product's stock.
func (c *Cart) checkStock(p *entity.Product, addMilli int64, excludeID int) error {
	reserved := c.reservedMilli(p.ID, excludeID)
	if reserved+addMilli > p.StockMilli {
		return &InsufficientStockError{
			ProductName: p.Name,
			Requested:   float64(reserved+addMilli) / 1000,
			Available:   p.StockBaseUnits(),
		}
	}
	return nil
}

// AddLine appends a line for the product. For weight-type products a
// weight must be given in a unit compatible with the product's unit;
// for unit-type products weight must be nil. Returns the created line.
func (c *Cart) AddLine(p entity.Product, quantity int, weight *WeightAmount) (*Line, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("billing: quantity must be at least 1, got %d", quantity)
	}

	line := Line{Product: p, Quantity: quantity}

	switch p.Type {
	case enum.ProductTypeWeight:
		if weight == nil || weight.Value <= 0 {
			return nil, fmt.Errorf("billing: weight required for weight-type product %s", p.Name)
		}
		if p.WeightUnit == nil {
			return nil, fmt.Errorf("billing: product %s has no weight unit configured", p.Name)
		}
		if !weight.Unit.Valid() {
			return nil, fmt.Errorf("billing: invalid weight unit %q", weight.Unit)
		}
		if err := checkWeightCompatible(*p.WeightUnit, weight.Unit); err != nil {
			return nil, fmt.Errorf("billing: %w", err)
		}
		w := *weight
		line.Weight = &w
		line.UnitPrice = p.PriceRupees() * ToBaseUnits(weight.Value, weight.Unit)
	case enum.ProductTypeUnit:
		if weight != nil {
			return nil, fmt.Errorf("billing: product %s is sold by unit, not weight", p.Name)
		}
		line.UnitPrice = p.PriceRupees()
	default:
		return nil, fmt.Errorf("billing: unknown product type %q", p.Type)
	}

	if err := c.checkStock(&p, line.ReservedMilli(), 0); err != nil {
		return nil, err
	}

	line.ID = c.nextID
	c.nextID++
	c.lines = append(c.lines, line)
	return &c.lines[len(c.lines)-1], nil
}

// UpdateQuantity changes a line's quantity. A quantity of zero or less
// removes the line. Otherwise the aggregate reservation for the line's
// product is revalidated with the line's old amount excluded and the
// new amount added.
func (c *Cart) UpdateQuantity(lineID, quantity int) error {
	idx := c.indexOf(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}

	if quantity <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		return nil
	}

	l := &c.lines[idx]
	need := l.baseMilliPerQty() * int64(quantity)
	if err := c.checkStock(&l.Product, need, lineID); err != nil {
		return err
	}

	l.Quantity = quantity
	return nil
}

// RemoveLine deletes a line. Removing a line that does not exist is a
// no-op; removal always succeeds.
func (c *Cart) RemoveLine(lineID int) {
	idx := c.indexOf(lineID)
	if idx < 0 {
		return
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
}

func (c *Cart) indexOf(lineID int) int {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// Totals is the computed money summary for a cart, in rupees.
type Totals struct {
	SubTotal        float64 `json:"sub_total"`
	DiscountPercent float64 `json:"discount_percent"`
	Discount        float64 `json:"discount"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
	GSTEnabled      bool    `json:"gst_enabled"`
}

// Totals computes subtotal, discount, tax and total.
//
// The discount percent is clamped to [0, 100]. Tax is computed per
// line, not on the aggregate: each line's total is reduced pro-rata by
// the discount and then taxed at that line's own GST rate, so a cart
// mixing 5% and 18% items taxes each at its own rate.
func (c *Cart) Totals(discountPercent float64, gstEnabled bool) Totals {
	if discountPercent < 0 {
		discountPercent = 0
	} else if discountPercent > 100 {
		discountPercent = 100
	}

	var subTotal float64
	for i := range c.lines {
		subTotal += c.lines[i].LineTotal()
	}

	discount := subTotal * discountPercent / 100

	var tax float64
	if gstEnabled {
		keep := 1 - discountPercent/100
		for i := range c.lines {
			l := &c.lines[i]
			tax += l.LineTotal() * keep * l.Product.GSTRate / 100
		}
	}

	return Totals{
		SubTotal:        subTotal,
		DiscountPercent: discountPercent,
		Discount:        discount,
		Tax:             tax,
		Total:           subTotal - discount + tax,
		GSTEnabled:      gstEnabled,
	}
}

// StockDeductions groups cart lines by product and sums the stock each
// product loses at checkout, in thousandths of the base unit. A
// product appearing in several lines yields a single deduction.
func (c *Cart) StockDeductions() map[uuid.UUID]int64 {
	deductions := make(map[uuid.UUID]int64)
	for i := range c.lines {
		l := &c.lines[i]
		deductions[l.Product.ID] += l.ReservedMilli()
	}
	return deductions
}
