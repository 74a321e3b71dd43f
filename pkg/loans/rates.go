package loans

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
)

// RateKind states how the configured interest rate is quoted.
type RateKind string

const (
	// AnnualEffective is an effective annual rate (TEA) converted to an
	// effective monthly rate before use.
	AnnualEffective RateKind = constants.RateKindAnnualEffective

	// MonthlyEffective is used as-is: the stored rate is already the monthly
	// percentage even though the field is named like an annual figure.
	MonthlyEffective RateKind = constants.RateKindMonthlyEffective
)

// ErrUnknownRateKind is returned for a rate kind other than AnnualEffective or
// MonthlyEffective. Reaching the converter with one is a caller bug.
var ErrUnknownRateKind = errors.New("unknown rate kind")

// Valid reports whether the kind is one the converter understands.
func (k RateKind) Valid() bool {
	return k == AnnualEffective || k == MonthlyEffective
}

// ParseRateKind normalizes an external rate kind. An empty value defaults to
// AnnualEffective; the short forms TEA and TEM are accepted as aliases.
func ParseRateKind(value string) (RateKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(AnnualEffective), "TEA":
		return AnnualEffective, nil
	case string(MonthlyEffective), "TEM":
		return MonthlyEffective, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRateKind, value)
	}
}

// PeriodicRate converts a rate quoted in percentage points into the effective
// monthly rate, as a unitless fraction, used by every other computation.
func PeriodicRate(ratePercent float64, kind RateKind) (float64, error) {
	switch kind {
	case MonthlyEffective:
		return mathutil.Percent(ratePercent), nil
	case AnnualEffective:
		return math.Pow(1+mathutil.Percent(ratePercent), 1.0/constants.MonthsPerYear) - 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRateKind, string(kind))
	}
}
