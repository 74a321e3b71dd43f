package validation

import (
	"strings"
	"testing"
)

func TestValidateStartDate(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		expected  string
	}{
		{"valid date", "2025-01-15", ""},
		{"missing date", "", "simulation A: no payment start date"},
		{"month only", "2025-01", "simulation A: invalid date"},
		{"wrong order", "15-01-2025", "simulation A: invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateStartDate("A", tt.startDate)
			if tt.expected == "" {
				if warning != "" {
					t.Errorf("ValidateStartDate() = %q, expected no warning", warning)
				}
				return
			}
			if !strings.HasPrefix(warning, tt.expected) {
				t.Errorf("ValidateStartDate() = %q, expected prefix %q", warning, tt.expected)
			}
		})
	}
}

func TestValidateGracePeriod(t *testing.T) {
	tests := []struct {
		name       string
		grace      int
		term       int
		expectWarn bool
	}{
		{"no grace", 0, 240, false},
		{"grace shorter than term", 239, 240, false},
		{"grace equal to term", 12, 12, true},
		{"grace longer than term", 24, 12, true},
		{"zero term left to the validator", 6, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateGracePeriod("A", tt.grace, tt.term)
			if (warning != "") != tt.expectWarn {
				t.Errorf("ValidateGracePeriod(%d, %d) = %q, expectWarn %v", tt.grace, tt.term, warning, tt.expectWarn)
			}
		})
	}
}

func TestValidateFinancedAmount(t *testing.T) {
	tests := []struct {
		name       string
		property   float64
		down       float64
		subsidy    float64
		expectWarn bool
	}{
		{"regular purchase", 200000, 20000, 10000, false},
		{"down payment covers price", 200000, 200000, 0, true},
		{"subsidy tips it over", 200000, 150000, 60000, true},
		{"missing property value left to the validator", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateFinancedAmount("A", tt.property, tt.down, tt.subsidy)
			if (warning != "") != tt.expectWarn {
				t.Errorf("ValidateFinancedAmount() = %q, expectWarn %v", warning, tt.expectWarn)
			}
		})
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	cv := ConfigValidator{
		Simulations: []SimulationConfig{
			{Name: "1", PaymentStartDate: "2025-01-15", TermMonths: 12, PropertyValue: 1000},
			{Name: "2", PaymentStartDate: "", TermMonths: 12, GracePeriodMonths: 12, PropertyValue: 1000, DownPayment: 1000},
		},
	}

	warnings := cv.ValidateAll()
	if len(warnings) != 3 {
		t.Fatalf("ValidateAll() returned %d warnings, expected 3: %v", len(warnings), warnings)
	}
	for _, w := range warnings {
		if !strings.HasPrefix(w, "simulation 2:") {
			t.Errorf("unexpected warning %q", w)
		}
	}
}
