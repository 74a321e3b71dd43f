package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
)

// ErrEmptySchedule is returned when indicators are requested before a schedule
// has been generated.
var ErrEmptySchedule = errors.New("amortization schedule is empty")

// IndicatorInputs carries everything the indicators need from a simulation.
type IndicatorInputs struct {
	Entries                []Entry
	PropertyValue          float64
	DownPayment            float64
	FinancedAmount         float64
	AppraisalFee           float64
	NotarialFee            float64
	DisbursementCommission float64
	RateKind               RateKind
	InterestRate           float64
	PeriodicRate           float64
}

// Indicators are the summary figures of a schedule, rounded to two decimals.
type Indicators struct {
	EffectiveAnnualCostRate float64
	NetPresentValue         float64
	InternalRateOfReturn    float64
}

// UpfrontCosts sums the one-time costs paid at disbursement.
func (in IndicatorInputs) UpfrontCosts() float64 {
	return in.AppraisalFee + in.NotarialFee + in.DisbursementCommission
}

// ComputeIndicators derives TCEA, VAN and TIR from a populated schedule.
func ComputeIndicators(in IndicatorInputs) (Indicators, error) {
	if len(in.Entries) == 0 {
		return Indicators{}, ErrEmptySchedule
	}

	tir, err := InternalRateOfReturn(in.RateKind, in.InterestRate, in.PeriodicRate)
	if err != nil {
		return Indicators{}, err
	}

	result := Indicators{
		EffectiveAnnualCostRate: EffectiveAnnualCostRate(in.Entries, in.UpfrontCosts(), in.DownPayment, in.PropertyValue),
		NetPresentValue:         NetPresentValue(in.Entries, in.FinancedAmount, constants.VANAnnualDiscountRate),
		InternalRateOfReturn:    tir,
	}
	if !mathutil.AllFinite(result.EffectiveAnnualCostRate, result.NetPresentValue, result.InternalRateOfReturn) {
		return Indicators{}, fmt.Errorf("%w: indicators tcea=%v van=%v tir=%v",
			ErrNonFinite, result.EffectiveAnnualCostRate, result.NetPresentValue, result.InternalRateOfReturn)
	}
	return result, nil
}

// EffectiveAnnualCostRate is a simplified all-in cost ratio: everything paid
// out (installments, upfront costs and down payment) relative to the property
// value, in percent. It does not annualize over cash-flow timing.
func EffectiveAnnualCostRate(entries []Entry, upfrontCosts, downPayment, propertyValue float64) float64 {
	totalCashOut := upfrontCosts + downPayment
	for _, entry := range entries {
		totalCashOut += entry.TotalInstallment
	}
	return mathutil.Round((totalCashOut/propertyValue - 1) * constants.PercentageMultiplier)
}

// NetPresentValue discounts every total installment at a fixed monthly rate
// derived from a nominal annual rate, net of the financed amount.
func NetPresentValue(entries []Entry, financedAmount, annualDiscountRate float64) float64 {
	monthlyDiscount := annualDiscountRate / constants.MonthsPerYear
	van := -financedAmount
	for i, entry := range entries {
		van += entry.TotalInstallment / math.Pow(1+monthlyDiscount, float64(i+1))
	}
	return mathutil.Round(van)
}

// InternalRateOfReturn reports an annualized approximation of the loan's own
// periodic rate. It does not solve the IRR equation over the cash flows; the
// approximation is kept so reported values stay comparable with existing
// simulations.
func InternalRateOfReturn(kind RateKind, interestRate, periodicRate float64) (float64, error) {
	switch kind {
	case AnnualEffective:
		return mathutil.Round(periodicRate * constants.MonthsPerYear * constants.PercentageMultiplier), nil
	case MonthlyEffective:
		return mathutil.Round(interestRate * constants.MonthsPerYear), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRateKind, string(kind))
	}
}
