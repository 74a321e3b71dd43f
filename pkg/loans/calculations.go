// Package loans implements the fixed-installment (French) amortization engine:
// rate conversion, schedule generation with an optional interest-only grace
// window, and the summary indicators derived from a schedule.
package loans

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"go.uber.org/zap"
)

var (
	// ErrNonFinite reports arithmetic that produced NaN or an infinity.
	ErrNonFinite = errors.New("non-finite result")

	// ErrNonFiniteInstallment is the ErrNonFinite raised by the annuity
	// installment itself, before any period is generated.
	ErrNonFiniteInstallment = fmt.Errorf("%w: installment", ErrNonFinite)

	// ErrInvalidTerms reports terms the generator cannot walk, such as a
	// non-positive term. Validation normally rules these out.
	ErrInvalidTerms = errors.New("invalid loan terms")
)

// Entry holds the values for one period of the schedule. Monetary fields are
// rounded to cents.
type Entry struct {
	Period           int     `json:"periodNumber" yaml:"periodNumber"`
	DueDate          string  `json:"dueDate" yaml:"dueDate"`
	OpeningBalance   float64 `json:"openingBalance" yaml:"openingBalance"`
	BaseInstallment  float64 `json:"baseInstallment" yaml:"baseInstallment"`
	Interest         float64 `json:"interestPortion" yaml:"interestPortion"`
	Principal        float64 `json:"principalPortion" yaml:"principalPortion"`
	InsuranceAddOn   float64 `json:"insuranceAddOn" yaml:"insuranceAddOn"`
	TotalInstallment float64 `json:"totalInstallment" yaml:"totalInstallment"`
	ClosingBalance   float64 `json:"closingBalance" yaml:"closingBalance"`
}

// Terms are the inputs of a schedule walk.
type Terms struct {
	Principal         float64
	PeriodicRate      float64
	TermMonths        int
	GracePeriodMonths int
	// MonthlyAddOn is the recurring insurance added on top of every base installment.
	MonthlyAddOn float64
	StartDate    time.Time
}

// Schedule is the outcome of a schedule walk.
type Schedule struct {
	// Installment is the unrounded constant base installment.
	Installment float64
	// MonthlyInstallment is the rounded installment including the add-on.
	MonthlyInstallment float64
	TotalInterest      float64
	Entries            []Entry
}

// CalculateInstallment calculates the constant installment of a loan using the
// standard annuity formula.
func CalculateInstallment(principal, periodicRate float64, termMonths int) float64 {
	if periodicRate == 0 {
		// The annuity formula is undefined at r = 0.
		return principal / float64(termMonths)
	}

	growth := math.Pow(1+periodicRate, float64(termMonths))
	return principal * periodicRate * growth / (growth - 1)
}

// CalculateInterestPayment calculates the interest portion accrued on a balance
// over one period.
func CalculateInterestPayment(balance, periodicRate float64) float64 {
	return balance * periodicRate
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates the complete period-by-period schedule.
//
// The installment is computed over the full principal and the full term; the
// grace window only defers principal reduction; it does not shorten the term
// used by the annuity formula. Each period's interest accrues on the unrounded
// balance carried from the previous period, while the stored entry is rounded.
func (g *AmortizationScheduleGenerator) GenerateSchedule(terms Terms) (*Schedule, error) {
	if terms.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive, got %d", ErrInvalidTerms, terms.TermMonths)
	}
	if terms.GracePeriodMonths < 0 {
		return nil, fmt.Errorf("%w: grace period cannot be negative, got %d", ErrInvalidTerms, terms.GracePeriodMonths)
	}

	installment := CalculateInstallment(terms.Principal, terms.PeriodicRate, terms.TermMonths)
	if !mathutil.IsFinite(installment) {
		return nil, fmt.Errorf("%w for principal %.2f at rate %g over %d months",
			ErrNonFiniteInstallment, terms.Principal, terms.PeriodicRate, terms.TermMonths)
	}

	g.logger.Debug(fmt.Sprintf("installment %.2f over %d months with %d grace months",
		installment, terms.TermMonths, terms.GracePeriodMonths),
		zap.String("op", "loans.GenerateSchedule"),
	)

	schedule := &Schedule{
		Installment:        installment,
		MonthlyInstallment: mathutil.Round(installment + terms.MonthlyAddOn),
		Entries:            make([]Entry, 0, terms.TermMonths),
	}

	addOn := mathutil.Round(terms.MonthlyAddOn)
	balance := terms.Principal
	totalInterest := 0.0

	for period := 1; period <= terms.TermMonths; period++ {
		interest := CalculateInterestPayment(balance, terms.PeriodicRate)

		var base, principal float64
		if period <= terms.GracePeriodMonths {
			base = interest
			principal = 0
		} else {
			base = installment
			principal = installment - interest
		}
		closing := balance - principal

		if !mathutil.AllFinite(interest, principal, closing) {
			return nil, fmt.Errorf("%w: period %d", ErrNonFinite, period)
		}

		entry := Entry{
			Period:           period,
			DueDate:          datetime.FormatDate(datetime.AddMonths(terms.StartDate, period)),
			OpeningBalance:   mathutil.Round(balance),
			BaseInstallment:  mathutil.Round(base),
			Interest:         mathutil.Round(interest),
			Principal:        mathutil.Round(principal),
			InsuranceAddOn:   addOn,
			TotalInstallment: mathutil.Round(base + terms.MonthlyAddOn),
			ClosingBalance:   mathutil.Round(closing),
		}
		schedule.Entries = append(schedule.Entries, entry)
		totalInterest += entry.Interest

		balance = closing
	}

	schedule.TotalInterest = mathutil.Round(totalInterest)

	if terms.GracePeriodMonths > 0 && !mathutil.IsZero(balance) {
		g.logger.Debug(fmt.Sprintf("schedule ends with residual balance %.2f after %d grace months",
			balance, terms.GracePeriodMonths),
			zap.String("op", "loans.GenerateSchedule"),
		)
	}

	return schedule, nil
}
