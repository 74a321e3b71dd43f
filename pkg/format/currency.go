// Package format renders monetary amounts and rates for display.
package format

import (
	"fmt"
	"math"
	"strings"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "S/ "

// Currency returns a currency string with the symbol and thousands separators (e.g., "-S/ 1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

// Percent renders a figure already expressed in percentage points (e.g., "12.68%").
func Percent(points float64) string {
	return fmt.Sprintf("%.2f%%", points)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
