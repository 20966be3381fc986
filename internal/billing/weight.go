package billing

import (
	"fmt"
	"math"

	"github.com/shopbill/shopbill-api/internal/domain/enum"
)

// WeightAmount is a measured quantity for a weight-type cart line,
// e.g. {1.5, kg} or {250, g}.
type WeightAmount struct {
	Value float64         `json:"value"`
	Unit  enum.WeightUnit `json:"unit"`
}

// ToBaseUnits normalizes a weight to the base unit of its measure:
// g -> kg and ml -> ltr divide by 1000; kg and ltr pass through. This
// is the single normalization applied before any stock comparison,
// since product stock is always held in the base unit.
func ToBaseUnits(value float64, unit enum.WeightUnit) float64 {
	if unit.IsSubUnit() {
		return value / 1000
	}
	return value
}

// ToMilli converts a weight to thousandths of the base unit. Gram and
// ml values are already thousandths, so 1000 g and 1 kg map to the
// same integer and stock arithmetic stays exact.
func ToMilli(value float64, unit enum.WeightUnit) int64 {
	if unit.IsSubUnit() {
		return int64(math.Round(value))
	}
	return int64(math.Round(value * 1000))
}

// checkWeightCompatible verifies the given unit shares a base with the
// product's configured unit (kg/g vs ltr/ml must not mix).
func checkWeightCompatible(productUnit, lineUnit enum.WeightUnit) error {
	if productUnit.Base() != lineUnit.Base() {
		return fmt.Errorf("weight unit %s is not compatible with product unit %s", lineUnit, productUnit)
	}
	return nil
}
