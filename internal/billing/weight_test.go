package billing

import (
	"testing"

	"github.com/shopbill/shopbill-api/internal/domain/enum"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  enum.WeightUnit
		want  float64
	}{
		{"grams to kg", 1000, enum.WeightUnitGram, 1},
		{"ml to ltr", 1000, enum.WeightUnitMl, 1},
		{"kg passthrough", 2.5, enum.WeightUnitKg, 2.5},
		{"ltr passthrough", 0.75, enum.WeightUnitLtr, 0.75},
		{"fractional grams", 250, enum.WeightUnitGram, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBaseUnits(tt.value, tt.unit)
			if got != tt.want {
				t.Fatalf("ToBaseUnits(%v, %s) = %v, want %v", tt.value, tt.unit, got, tt.want)
			}
		})
	}
}

func TestToMilliConsistency(t *testing.T) {
	// 1000 g and 1 kg must map to the same integer amount.
	if g, kg := ToMilli(1000, enum.WeightUnitGram), ToMilli(1, enum.WeightUnitKg); g != kg {
		t.Fatalf("1000 g = %d milli, 1 kg = %d milli", g, kg)
	}
	if ml, ltr := ToMilli(1000, enum.WeightUnitMl), ToMilli(1, enum.WeightUnitLtr); ml != ltr {
		t.Fatalf("1000 ml = %d milli, 1 ltr = %d milli", ml, ltr)
	}
	if got := ToMilli(1.5, enum.WeightUnitKg); got != 1500 {
		t.Fatalf("1.5 kg = %d milli, want 1500", got)
	}
	if got := ToMilli(500, enum.WeightUnitGram); got != 500 {
		t.Fatalf("500 g = %d milli, want 500", got)
	}
}

func TestCheckWeightCompatible(t *testing.T) {
	if err := checkWeightCompatible(enum.WeightUnitKg, enum.WeightUnitGram); err != nil {
		t.Fatalf("kg/g should be compatible: %v", err)
	}
	if err := checkWeightCompatible(enum.WeightUnitLtr, enum.WeightUnitMl); err != nil {
		t.Fatalf("ltr/ml should be compatible: %v", err)
	}
	if err := checkWeightCompatible(enum.WeightUnitKg, enum.WeightUnitMl); err == nil {
		t.Fatal("kg/ml should not be compatible")
	}
}
