package config

import (
	"context"
	"fmt"

	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
)

// Simulation is one simulation entry of the config file.
type Simulation struct {
	ClientID               string  `yaml:"clientId,omitempty"`
	ClientName             string  `yaml:"clientName"`
	TargetProgram          string  `yaml:"targetProgram"`
	FinancialEntity        string  `yaml:"financialEntity"`
	PropertyValue          float64 `yaml:"propertyValue"`
	DownPayment            float64 `yaml:"downPayment"`
	SubsidyAmount          float64 `yaml:"subsidyAmount,omitempty"`
	RateKind               string  `yaml:"rateKind,omitempty"` // ANNUAL_EFFECTIVE (TEA), MONTHLY_EFFECTIVE (TEM)
	InterestRate           float64 `yaml:"interestRate"`
	TermMonths             int     `yaml:"termMonths"`
	GracePeriodMonths      int     `yaml:"gracePeriodMonths,omitempty"`
	PaymentStartDate       string  `yaml:"paymentStartDate"` // YYYY-MM-DD
	LifeInsurance          float64 `yaml:"lifeInsurance,omitempty"`
	PropertyInsurance      float64 `yaml:"propertyInsurance,omitempty"`
	AppraisalFee           float64 `yaml:"appraisalFee,omitempty"`
	NotarialFee            float64 `yaml:"notarialFee,omitempty"`
	DisbursementCommission float64 `yaml:"disbursementCommission,omitempty"`
}

func (s Simulation) label(index int) string {
	if s.ClientName != "" {
		return fmt.Sprintf("%d (%s)", index+1, s.ClientName)
	}
	return fmt.Sprintf("%d", index+1)
}

// ToInput converts a config entry into a simulation input. An empty start date
// is left as the zero time so validation reports it.
func (s Simulation) ToInput() (simulation.Input, error) {
	kind, err := loans.ParseRateKind(s.RateKind)
	if err != nil {
		return simulation.Input{}, err
	}

	in := simulation.Input{
		ClientID:               s.ClientID,
		ClientName:             s.ClientName,
		TargetProgram:          s.TargetProgram,
		FinancialEntity:        s.FinancialEntity,
		PropertyValue:          s.PropertyValue,
		DownPayment:            s.DownPayment,
		SubsidyAmount:          s.SubsidyAmount,
		RateKind:               kind,
		InterestRate:           s.InterestRate,
		TermMonths:             s.TermMonths,
		GracePeriodMonths:      s.GracePeriodMonths,
		LifeInsurance:          s.LifeInsurance,
		PropertyInsurance:      s.PropertyInsurance,
		AppraisalFee:           s.AppraisalFee,
		NotarialFee:            s.NotarialFee,
		DisbursementCommission: s.DisbursementCommission,
	}

	if s.PaymentStartDate != "" {
		in.PaymentStartDate, err = datetime.ParseDate(s.PaymentStartDate)
		if err != nil {
			return simulation.Input{}, err
		}
	}
	return in, nil
}

// SimulationInputs converts every configured simulation. The returned inputs
// keep config order; an entry that cannot be converted keeps only its client
// fields and its error is returned under its index.
func (c *Configuration) SimulationInputs() ([]simulation.Input, map[int]error) {
	inputs := make([]simulation.Input, len(c.Simulations))
	errs := make(map[int]error)
	for i, sim := range c.Simulations {
		in, err := sim.ToInput()
		if err != nil {
			inputs[i] = simulation.Input{ClientID: sim.ClientID, ClientName: sim.ClientName}
			errs[i] = fmt.Errorf("simulation %s: %w", sim.label(i), err)
			continue
		}
		inputs[i] = in
	}
	return inputs, errs
}

// CalculateSimulations converts and calculates every configured simulation.
// Results are in config order and an entry that fails conversion carries its
// error without stopping the others.
func (c *Configuration) CalculateSimulations(ctx context.Context, calc *simulation.Calculator) ([]simulation.Input, []simulation.BatchResult) {
	inputs, errs := c.SimulationInputs()

	results := make([]simulation.BatchResult, len(inputs))
	pending := make([]simulation.Input, 0, len(inputs))
	positions := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if err, ok := errs[i]; ok {
			results[i] = simulation.BatchResult{Index: i, Err: err}
			continue
		}
		pending = append(pending, in)
		positions = append(positions, i)
	}

	for j, result := range calc.CalculateBatch(ctx, pending) {
		result.Index = positions[j]
		results[result.Index] = result
	}
	return inputs, results
}
