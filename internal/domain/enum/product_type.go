package enum

import "fmt"

// ProductType distinguishes products sold by count from products sold by weight/volume.
type ProductType string

const (
	ProductTypeUnit   ProductType = "unit"
	ProductTypeWeight ProductType = "weight"
)

// Valid reports whether the product type is a known value.
func (t ProductType) Valid() bool {
	return t == ProductTypeUnit || t == ProductTypeWeight
}

// ParseProductType parses a product type string.
func ParseProductType(s string) (ProductType, error) {
	t := ProductType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid product type %q (use unit or weight)", s)
	}
	return t, nil
}
