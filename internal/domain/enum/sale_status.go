package enum

import "fmt"

// SaleStatus is the lifecycle state of a recorded sale.
// Sales are immutable once recorded; cancellation is the only
// transition and restores the deducted stock.
type SaleStatus int

const (
	SaleStatusComplete SaleStatus = iota
	SaleStatusCancelled
)

func (s SaleStatus) String() string {
	switch s {
	case SaleStatusComplete:
		return "complete"
	case SaleStatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ParseSaleStatus converts the wire form back to a SaleStatus. The
// empty string maps to complete, the default state of a recorded sale.
func ParseSaleStatus(s string) (SaleStatus, error) {
	switch s {
	case "complete", "":
		return SaleStatusComplete, nil
	case "cancelled":
		return SaleStatusCancelled, nil
	}
	return SaleStatusComplete, fmt.Errorf("unknown sale status %q", s)
}
