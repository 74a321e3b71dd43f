package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"github.com/iwvelando/mortgage-simulator/pkg/testutil"
	"go.uber.org/zap"
)

// runConfig loads a config file and runs every simulation exactly as main() does.
func runConfig(t *testing.T, path string) ([]*simulation.Record, map[int]error) {
	t.Helper()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	calc := simulation.NewCalculator(zap.NewNop(), simulation.WithWorkers(conf.Batch.Workers))
	_, results := conf.CalculateSimulations(context.Background(), calc)
	return testutil.Records(results)
}

// TestMainIntegrationBaseline checks the calculated figures of every
// simulation in the test config against known values
func TestMainIntegrationBaseline(t *testing.T) {
	records, failures := runConfig(t, "../test_config.yaml")
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedOrder := []string{"Two Month Check", "Ana Torres", "Luis Quispe"}
	for i, name := range expectedOrder {
		if records[i].ClientName != name {
			t.Errorf("record %d = %s, expected %s", i, records[i].ClientName, name)
		}
	}

	baselineChecks := []struct {
		client         string
		financed       float64
		installment    float64
		totalInterest  float64
		scheduleLength int
		firstDueDate   string
		lastDueDate    string
	}{
		{"Two Month Check", 1000, 507.51, 15.02, 2, "2025-02-15", "2025-03-15"},
		{"Ana Torres", 100000, 1058.62, 154069.62, 240, "2025-03-01", "2045-02-01"},
		{"Luis Quispe", 190000, 2002.61, -1, 180, "2025-05-01", "2040-03-31"},
	}

	for _, check := range baselineChecks {
		t.Run(check.client, func(t *testing.T) {
			r := testutil.FindRecord(records, check.client)
			if r == nil {
				t.Fatalf("record %s not found", check.client)
			}
			if r.FinancedAmount != check.financed {
				t.Errorf("FinancedAmount = %.2f, expected %.2f", r.FinancedAmount, check.financed)
			}
			if r.MonthlyInstallment != check.installment {
				t.Errorf("MonthlyInstallment = %.2f, expected %.2f", r.MonthlyInstallment, check.installment)
			}
			if check.totalInterest >= 0 && math.Abs(r.TotalInterest-check.totalInterest) > 0.01 {
				t.Errorf("TotalInterest = %.2f, expected %.2f", r.TotalInterest, check.totalInterest)
			}
			if len(r.Schedule) != check.scheduleLength {
				t.Fatalf("schedule has %d entries, expected %d", len(r.Schedule), check.scheduleLength)
			}
			if got := r.Schedule[0].DueDate; got != check.firstDueDate {
				t.Errorf("first due date = %s, expected %s", got, check.firstDueDate)
			}
			if got := r.Schedule[len(r.Schedule)-1].DueDate; got != check.lastDueDate {
				t.Errorf("last due date = %s, expected %s", got, check.lastDueDate)
			}
		})
	}
}

// TestGraceWindowLeavesResidualBalance checks the interest-only months and the
// balance left over because the installment is spread over the full term
func TestGraceWindowLeavesResidualBalance(t *testing.T) {
	records, _ := runConfig(t, "../test_config.yaml")
	r := testutil.FindRecord(records, "Luis Quispe")
	if r == nil {
		t.Fatal("record Luis Quispe not found")
	}

	for _, e := range r.Schedule[:6] {
		if e.Principal != 0 {
			t.Errorf("period %d: principal = %.2f during grace", e.Period, e.Principal)
		}
		if e.Interest != 1425 || e.TotalInstallment != 1500.5 {
			t.Errorf("period %d: interest %.2f total %.2f, expected 1425.00 and 1500.50",
				e.Period, e.Interest, e.TotalInstallment)
		}
		if e.ClosingBalance != 190000 {
			t.Errorf("period %d: closing balance = %.2f during grace", e.Period, e.ClosingBalance)
		}
	}

	if e := r.Schedule[6]; e.BaseInstallment != 1927.11 || e.InsuranceAddOn != 75.5 {
		t.Errorf("first amortizing period: base %.2f add-on %.2f", e.BaseInstallment, e.InsuranceAddOn)
	}

	last := r.Schedule[len(r.Schedule)-1]
	if last.ClosingBalance <= 0 {
		t.Errorf("expected a residual balance after the grace window, got %.2f", last.ClosingBalance)
	}
}

// TestCSVOutputFormat tests that CSV output has one row per schedule entry
func TestCSVOutputFormat(t *testing.T) {
	records, _ := runConfig(t, "../test_config.yaml")

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, records); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV output: %v", err)
	}

	expectedRows := 1 + 2 + 240 + 180
	if len(rows) != expectedRows {
		t.Fatalf("CSV has %d rows, expected %d", len(rows), expectedRows)
	}

	header := strings.Join(rows[0], ",")
	if header != "client,period,dueDate,openingBalance,baseInstallment,interestPortion,principalPortion,insuranceAddOn,totalInstallment,closingBalance" {
		t.Errorf("unexpected CSV header: %s", header)
	}

	for i, row := range rows[1:] {
		if len(row) != 10 {
			t.Errorf("CSV line %d should have 10 parts, got %d", i+1, len(row))
		}
	}

	if got := strings.Join(rows[2], ","); got != "Two Month Check,2,2025-03-15,502.49,507.51,5.02,502.49,0.00,507.51,0.00" {
		t.Errorf("unexpected second row: %s", got)
	}
}

// TestPrettyOutputFormat tests the pretty print output
func TestPrettyOutputFormat(t *testing.T) {
	records, _ := runConfig(t, "../test_config.yaml")

	var buf bytes.Buffer
	if err := output.PrettyFormat(&buf, records); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"--- Simulation for Two Month Check (Crédito Hipotecario Convencional, Banco de Crédito del Perú) ---",
		"--- Simulation for Ana Torres (Nuevo Crédito MiVivienda, Interbank) ---",
		"--- Simulation for Luis Quispe (Techo Propio, Caja Arequipa) ---",
		"Monthly installment: S/ 1,058.62",
		"Total interest:      S/ 154,069.62",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q", want)
		}
	}
}

// TestJSONOutputFormat tests the JSON projection of every record
func TestJSONOutputFormat(t *testing.T) {
	records, _ := runConfig(t, "../test_config.yaml")

	var buf bytes.Buffer
	if err := output.JSONFormat(&buf, records); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var views []simulation.FullView
	if err := json.Unmarshal(buf.Bytes(), &views); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].ID != "" {
		t.Errorf("unsaved record should have no id, got %s", views[0].ID)
	}
	if views[1].RateKind != "ANNUAL_EFFECTIVE" {
		t.Errorf("RateKind = %s, expected ANNUAL_EFFECTIVE", views[1].RateKind)
	}
	if len(views[2].Schedule) != 180 {
		t.Errorf("schedule has %d entries, expected 180", len(views[2].Schedule))
	}
}

// TestConfigurationValidation tests validation of different configuration scenarios
func TestConfigurationValidation(t *testing.T) {
	valid := config.Simulation{
		ClientName:       "Valid",
		TargetProgram:    "convencional",
		FinancialEntity:  "bcp",
		PropertyValue:    1000,
		RateKind:         "TEM",
		InterestRate:     1,
		TermMonths:       2,
		PaymentStartDate: "2025-01-15",
	}

	tests := []struct {
		name           string
		modify         func(s *config.Simulation)
		expectConvErr  bool
		expectValidErr string
	}{
		{
			name:   "Valid minimal configuration",
			modify: func(s *config.Simulation) {},
		},
		{
			name:          "Invalid start date format",
			modify:        func(s *config.Simulation) { s.PaymentStartDate = "15/01/2025" },
			expectConvErr: true,
		},
		{
			name:          "Unknown rate kind",
			modify:        func(s *config.Simulation) { s.RateKind = "NOMINAL" },
			expectConvErr: true,
		},
		{
			name:           "Missing start date",
			modify:         func(s *config.Simulation) { s.PaymentStartDate = "" },
			expectValidErr: "payment start date is required",
		},
		{
			name:           "Zero rate",
			modify:         func(s *config.Simulation) { s.InterestRate = 0 },
			expectValidErr: "interest rate must be greater than 0",
		},
	}

	calc := simulation.NewCalculator(zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := valid
			tt.modify(&sim)
			conf := &config.Configuration{Simulations: []config.Simulation{sim}}

			inputs, errs := conf.SimulationInputs()
			if tt.expectConvErr {
				if errs[0] == nil {
					t.Error("Expected error in SimulationInputs but got none")
				}
				return
			}
			if errs[0] != nil {
				t.Fatalf("Unexpected error in SimulationInputs: %v", errs[0])
			}

			_, err := calc.Calculate(context.Background(), inputs[0])
			if tt.expectValidErr == "" {
				if err != nil {
					t.Errorf("Unexpected error in Calculate: %v", err)
				}
				return
			}

			var validationErr *simulation.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Calculate() error = %v, expected a validation error", err)
			}
			if !strings.Contains(validationErr.Error(), tt.expectValidErr) {
				t.Errorf("validation error %q missing %q", validationErr.Error(), tt.expectValidErr)
			}
		})
	}
}
