package simulation

import (
	"strings"
)

// Validation is the verdict of Validate.
type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks an input for completeness and consistency. It never fails:
// every violated rule adds one message, in a fixed order.
func Validate(in Input) Validation {
	var errs []string

	if strings.TrimSpace(in.ClientName) == "" {
		errs = append(errs, "client name is required")
	}
	if strings.TrimSpace(in.TargetProgram) == "" {
		errs = append(errs, "target program is required")
	}
	if in.PropertyValue <= 0 {
		errs = append(errs, "property value must be greater than 0")
	}
	if in.DownPayment < 0 {
		errs = append(errs, "down payment cannot be negative")
	}
	if in.DownPayment >= in.PropertyValue {
		errs = append(errs, "down payment must be less than the property value")
	}
	if in.PaymentStartDate.IsZero() {
		errs = append(errs, "payment start date is required")
	}
	if in.InterestRate <= 0 {
		errs = append(errs, "interest rate must be greater than 0")
	}
	if in.TermMonths <= 0 {
		errs = append(errs, "loan term must be greater than 0")
	}
	if strings.TrimSpace(in.FinancialEntity) == "" {
		errs = append(errs, "financial entity is required")
	}

	if in.SubsidyAmount < 0 {
		errs = append(errs, "subsidy amount cannot be negative")
	}
	if in.GracePeriodMonths < 0 {
		errs = append(errs, "grace period cannot be negative")
	} else if in.TermMonths > 0 && in.GracePeriodMonths >= in.TermMonths {
		errs = append(errs, "grace period must be shorter than the loan term")
	}
	if in.LifeInsurance < 0 || in.PropertyInsurance < 0 ||
		in.AppraisalFee < 0 || in.NotarialFee < 0 || in.DisbursementCommission < 0 {
		errs = append(errs, "costs cannot be negative")
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}
