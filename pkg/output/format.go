// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-simulator/internal/catalog"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders records in the named output format.
func Write(w io.Writer, outputFormat string, records []*simulation.Record) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, records)
	case constants.OutputFormatCSV:
		return CsvFormat(w, records)
	case constants.OutputFormatJSON:
		return JSONFormat(w, records)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, records []*simulation.Record) error {
	p := message.NewPrinter(language.English)
	entities := catalog.FinancialEntities()
	programs := catalog.HousingPrograms()

	for i, r := range records {
		_, _ = fmt.Fprintf(w, "--- Simulation for %s (%s, %s) ---\n",
			r.ClientName, catalog.Lookup(programs, r.TargetProgram), catalog.Lookup(entities, r.FinancialEntity))
		_, _ = fmt.Fprintf(w, "Financed amount:     %s\n", format.Currency(r.FinancedAmount))
		_, _ = fmt.Fprintf(w, "Rate:                %s %s (monthly %.6f%%)\n",
			format.Percent(r.InterestRate), r.RateKind, r.PeriodicRate*constants.PercentageMultiplier)
		_, _ = fmt.Fprintf(w, "Term:                %d months, %d grace\n", r.TermMonths, r.GracePeriodMonths)
		_, _ = fmt.Fprintf(w, "Monthly installment: %s\n", format.Currency(r.MonthlyInstallment))
		_, _ = fmt.Fprintf(w, "Total interest:      %s\n", format.Currency(r.TotalInterest))
		_, _ = fmt.Fprintf(w, "TCEA: %s | VAN: %s | TIR: %s\n",
			format.Percent(r.EffectiveAnnualCostRate), format.Currency(r.NetPresentValue), format.Percent(r.InternalRateOfReturn))
		_, _ = fmt.Fprintf(w, "Period | Due date   | Opening | Interest | Principal | Insurance | Installment | Closing\n")
		_, _ = fmt.Fprintf(w, "______ | __________ | _______ | ________ | _________ | _________ | ___________ | _______\n")
		for _, e := range r.Schedule {
			_, _ = p.Fprintf(w, "%s | %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f\n",
				fmt.Sprintf("%6d", e.Period), e.DueDate, e.OpeningBalance, e.Interest, e.Principal,
				e.InsuranceAddOn, e.TotalInstallment, e.ClosingBalance)
		}
		if i < len(records)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
	return nil
}

var csvHeader = []string{
	"client", "period", "dueDate", "openingBalance", "baseInstallment", "interestPortion",
	"principalPortion", "insuranceAddOn", "totalInstallment", "closingBalance",
}

// CsvFormat outputs one row per schedule entry of every record, in comma-separated value format.
func CsvFormat(w io.Writer, records []*simulation.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	money := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	for _, r := range records {
		for _, e := range r.Schedule {
			row := []string{
				r.ClientName, strconv.Itoa(e.Period), e.DueDate, money(e.OpeningBalance),
				money(e.BaseInstallment), money(e.Interest), money(e.Principal),
				money(e.InsuranceAddOn), money(e.TotalInstallment), money(e.ClosingBalance),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the full projection of every record.
func JSONFormat(w io.Writer, records []*simulation.Record) error {
	views := make([]simulation.FullView, 0, len(records))
	for _, r := range records {
		views = append(views, r.Full())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
