// Package simulation runs the mortgage payment-plan pipeline: it validates a
// caller's input, derives the financed amount, converts the rate, generates the
// amortization schedule and computes the summary indicators.
package simulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
)

// Input holds every caller-supplied field of a simulation.
type Input struct {
	ClientID        string
	ClientName      string
	TargetProgram   string
	FinancialEntity string

	PropertyValue float64
	DownPayment   float64
	SubsidyAmount float64

	RateKind          loans.RateKind
	InterestRate      float64 // percentage points, 12 means 12%
	TermMonths        int
	GracePeriodMonths int
	PaymentStartDate  time.Time

	// Recurring monthly costs.
	LifeInsurance     float64
	PropertyInsurance float64

	// One-time costs paid at disbursement.
	AppraisalFee           float64
	NotarialFee            float64
	DisbursementCommission float64
}

// FinancedAmount is the principal to amortize.
func (in Input) FinancedAmount() float64 {
	return in.PropertyValue - in.DownPayment - in.SubsidyAmount
}

// MonthlyAddOn is the recurring insurance added to every installment.
func (in Input) MonthlyAddOn() float64 {
	return in.LifeInsurance + in.PropertyInsurance
}

// withDefaults fills the fields that have a documented default.
func (in Input) withDefaults() Input {
	if in.RateKind == "" {
		in.RateKind = loans.AnnualEffective
	}
	return in
}

// Record is a simulation with its results. The pipeline returns a fresh Record
// per call and never mutates it afterwards.
type Record struct {
	Input

	// Intermediate values.
	FinancedAmount float64
	PeriodicRate   float64

	// Results.
	MonthlyInstallment      float64
	TotalInterest           float64
	Schedule                []loans.Entry
	EffectiveAnnualCostRate float64
	NetPresentValue         float64
	InternalRateOfReturn    float64

	// Metadata, populated by persistence only.
	ID        uuid.UUID
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PersistedView is the projection written to storage: inputs and results plus
// the owner and timestamps.
type PersistedView struct {
	ClientID                string        `json:"clientId"`
	ClientName              string        `json:"clientName"`
	TargetProgram           string        `json:"targetProgram"`
	DownPayment             float64       `json:"downPayment"`
	PropertyValue           float64       `json:"propertyValue"`
	SubsidyAmount           float64       `json:"subsidyAmount"`
	FinancedAmount          float64       `json:"financedAmount"`
	PaymentStartDate        string        `json:"paymentStartDate"`
	RateKind                string        `json:"rateKind"`
	InterestRate            float64       `json:"interestRate"`
	TermMonths              int           `json:"termMonths"`
	GracePeriodMonths       int           `json:"gracePeriodMonths"`
	FinancialEntity         string        `json:"financialEntity"`
	LifeInsurance           float64       `json:"lifeInsurance"`
	AppraisalFee            float64       `json:"appraisalFee"`
	PropertyInsurance       float64       `json:"propertyInsurance"`
	NotarialFee             float64       `json:"notarialFee"`
	DisbursementCommission  float64       `json:"disbursementCommission"`
	MonthlyInstallment      float64       `json:"monthlyInstallment"`
	TotalInterest           float64       `json:"totalInterest"`
	EffectiveAnnualCostRate float64       `json:"tcea"`
	NetPresentValue         float64       `json:"van"`
	InternalRateOfReturn    float64       `json:"tir"`
	Schedule                []loans.Entry `json:"amortizationSchedule"`
	OwnerID                 string        `json:"userId"`
	CreatedAt               time.Time     `json:"createdAt"`
	UpdatedAt               time.Time     `json:"updatedAt"`
}

// FullView is the complete projection returned to API callers. It adds the
// identifier and the derived periodic rate to the persisted fields.
type FullView struct {
	ID string `json:"id,omitempty"`
	PersistedView
	PeriodicRate float64 `json:"periodicRate"`
}

// Persisted returns the storage projection of the record.
func (r *Record) Persisted() PersistedView {
	schedule := r.Schedule
	if schedule == nil {
		schedule = []loans.Entry{}
	}
	return PersistedView{
		ClientID:                r.ClientID,
		ClientName:              r.ClientName,
		TargetProgram:           r.TargetProgram,
		DownPayment:             r.DownPayment,
		PropertyValue:           r.PropertyValue,
		SubsidyAmount:           r.SubsidyAmount,
		FinancedAmount:          r.FinancedAmount,
		PaymentStartDate:        datetime.FormatDate(r.PaymentStartDate),
		RateKind:                string(r.RateKind),
		InterestRate:            r.InterestRate,
		TermMonths:              r.TermMonths,
		GracePeriodMonths:       r.GracePeriodMonths,
		FinancialEntity:         r.FinancialEntity,
		LifeInsurance:           r.LifeInsurance,
		AppraisalFee:            r.AppraisalFee,
		PropertyInsurance:       r.PropertyInsurance,
		NotarialFee:             r.NotarialFee,
		DisbursementCommission:  r.DisbursementCommission,
		MonthlyInstallment:      r.MonthlyInstallment,
		TotalInterest:           r.TotalInterest,
		EffectiveAnnualCostRate: r.EffectiveAnnualCostRate,
		NetPresentValue:         r.NetPresentValue,
		InternalRateOfReturn:    r.InternalRateOfReturn,
		Schedule:                schedule,
		OwnerID:                 r.OwnerID,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

// Full returns the complete projection of the record.
func (r *Record) Full() FullView {
	view := FullView{
		PersistedView: r.Persisted(),
		PeriodicRate:  r.PeriodicRate,
	}
	if r.ID != uuid.Nil {
		view.ID = r.ID.String()
	}
	return view
}
