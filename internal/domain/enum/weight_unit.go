package enum

import "fmt"

// WeightUnit is the unit a weight-type product is measured in.
// Stock for weight-type products is always held in the base unit
// (kg or ltr); g and ml are sub-units of those.
type WeightUnit string

const (
	WeightUnitKg   WeightUnit = "kg"
	WeightUnitGram WeightUnit = "g"
	WeightUnitLtr  WeightUnit = "ltr"
	WeightUnitMl   WeightUnit = "ml"
)

// Valid reports whether the weight unit is a known value.
func (u WeightUnit) Valid() bool {
	switch u {
	case WeightUnitKg, WeightUnitGram, WeightUnitLtr, WeightUnitMl:
		return true
	}
	return false
}

// Base returns the base unit this unit normalizes to (kg or ltr).
func (u WeightUnit) Base() WeightUnit {
	switch u {
	case WeightUnitGram:
		return WeightUnitKg
	case WeightUnitMl:
		return WeightUnitLtr
	}
	return u
}

// IsSubUnit reports whether the unit is a thousandth of its base unit.
func (u WeightUnit) IsSubUnit() bool {
	return u == WeightUnitGram || u == WeightUnitMl
}

// ParseWeightUnit parses a weight unit string.
func ParseWeightUnit(s string) (WeightUnit, error) {
	u := WeightUnit(s)
	if !u.Valid() {
		return "", fmt.Errorf("invalid weight unit %q (use kg, g, ltr or ml)", s)
	}
	return u, nil
}
