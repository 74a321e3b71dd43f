package simulation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPreconditionViolation marks a caller bug, such as an unknown rate kind or
// indicators requested before a schedule exists. It is never a user-facing
// validation problem.
var ErrPreconditionViolation = errors.New("precondition violation")

// ValidationError carries every violated input rule, in check order.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// Computation stages reported by ComputationError.
const (
	StageInstallment = "installment"
	StageSchedule    = "schedule"
	StageIndicators  = "indicators"
)

// ComputationError reports arithmetic that produced a non-finite result.
type ComputationError struct {
	Stage string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
