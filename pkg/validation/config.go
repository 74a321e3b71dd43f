// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
)

// ValidateStartDate checks that a simulation has a parsable payment start date.
func ValidateStartDate(name, startDate string) string {
	if startDate == "" {
		return fmt.Sprintf("simulation %s: no payment start date", name)
	}
	if _, err := datetime.ParseDate(startDate); err != nil {
		return fmt.Sprintf("simulation %s: %v", name, err)
	}
	return ""
}

// ValidateGracePeriod checks that the grace window leaves at least one
// amortizing period.
func ValidateGracePeriod(name string, graceMonths, termMonths int) string {
	if termMonths > 0 && graceMonths >= termMonths {
		return fmt.Sprintf("simulation %s: grace period of %d months covers the whole %d month term",
			name, graceMonths, termMonths)
	}
	return ""
}

// ValidateFinancedAmount checks that down payment and subsidy leave a positive
// amount to finance.
func ValidateFinancedAmount(name string, propertyValue, downPayment, subsidyAmount float64) string {
	if propertyValue > 0 && downPayment+subsidyAmount >= propertyValue {
		return fmt.Sprintf("simulation %s: down payment and subsidy leave nothing to finance", name)
	}
	return ""
}

// ConfigValidator checks configured simulations for problems worth a warning.
type ConfigValidator struct {
	Simulations []SimulationConfig
}

// SimulationConfig is the subset of a configured simulation the checks need.
type SimulationConfig struct {
	Name              string
	PaymentStartDate  string
	TermMonths        int
	GracePeriodMonths int
	PropertyValue     float64
	DownPayment       float64
	SubsidyAmount     float64
}

// ValidateAll validates every simulation and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, sim := range cv.Simulations {
		checks := []string{
			ValidateGracePeriod(sim.Name, sim.GracePeriodMonths, sim.TermMonths),
			ValidateFinancedAmount(sim.Name, sim.PropertyValue, sim.DownPayment, sim.SubsidyAmount),
			ValidateStartDate(sim.Name, sim.PaymentStartDate),
		}
		for _, warning := range checks {
			if warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}
