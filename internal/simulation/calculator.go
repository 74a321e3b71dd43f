package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/iwvelando/mortgage-simulator/internal/simulation"

// Outcomes passed to a Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeComputation  = "computation_error"
	OutcomePrecondition = "precondition_error"
)

// Recorder observes finished pipeline runs.
type Recorder interface {
	ObserveCalculation(outcome string, rateKind string, elapsed time.Duration)
}

// Calculator runs the simulation pipeline. It holds no per-call state and is
// safe for concurrent use.
type Calculator struct {
	logger    *zap.Logger
	generator *loans.AmortizationScheduleGenerator
	recorder  Recorder
	tracer    trace.Tracer
	workers   int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithRecorder reports every run to r.
func WithRecorder(r Recorder) Option {
	return func(c *Calculator) { c.recorder = r }
}

// WithWorkers sets the batch worker count.
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewCalculator creates a Calculator. A nil logger disables logging.
func NewCalculator(logger *zap.Logger, opts ...Option) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Calculator{
		logger:    logger,
		generator: loans.NewAmortizationScheduleGenerator(logger),
		tracer:    otel.Tracer(tracerName),
		workers:   constants.DefaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate runs Validate, then derives the financed amount, converts the
// rate, generates the schedule and computes the indicators. Any failure
// aborts the run; no partial record is returned. The context only carries
// tracing.
func (c *Calculator) Calculate(ctx context.Context, in Input) (*Record, error) {
	in = in.withDefaults()
	start := time.Now()

	_, span := c.tracer.Start(ctx, "simulation.Calculate", trace.WithAttributes(
		attribute.String("simulation.rate_kind", string(in.RateKind)),
		attribute.Int("simulation.term_months", in.TermMonths),
		attribute.Int("simulation.grace_months", in.GracePeriodMonths),
	))
	defer span.End()

	record, err := c.calculate(in)

	outcome := outcomeOf(err)
	if c.recorder != nil {
		c.recorder.ObserveCalculation(outcome, string(in.RateKind), time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	span.SetAttributes(attribute.Float64("simulation.monthly_installment", record.MonthlyInstallment))
	return record, nil
}

func (c *Calculator) calculate(in Input) (*Record, error) {
	if v := Validate(in); !v.Valid {
		c.logger.Info("simulation input rejected",
			zap.String("op", "simulation.Calculate"),
			zap.String("client", in.ClientName),
			zap.Strings("errors", v.Errors),
		)
		return nil, &ValidationError{Errors: v.Errors}
	}

	record := &Record{Input: in}
	record.FinancedAmount = mathutil.Round(in.FinancedAmount())

	rate, err := loans.PeriodicRate(in.InterestRate, in.RateKind)
	if err != nil {
		c.logger.Error("rate conversion failed",
			zap.String("op", "simulation.Calculate"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPreconditionViolation, err)
	}
	record.PeriodicRate = rate

	principal := in.FinancedAmount()
	schedule, err := c.generator.GenerateSchedule(loans.Terms{
		Principal:         principal,
		PeriodicRate:      rate,
		TermMonths:        in.TermMonths,
		GracePeriodMonths: in.GracePeriodMonths,
		MonthlyAddOn:      in.MonthlyAddOn(),
		StartDate:         in.PaymentStartDate,
	})
	switch {
	case errors.Is(err, loans.ErrNonFiniteInstallment):
		return nil, c.computationFailed(StageInstallment, err)
	case errors.Is(err, loans.ErrNonFinite):
		return nil, c.computationFailed(StageSchedule, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrPreconditionViolation, err)
	}
	record.MonthlyInstallment = schedule.MonthlyInstallment
	record.TotalInterest = schedule.TotalInterest
	record.Schedule = schedule.Entries

	indicators, err := loans.ComputeIndicators(loans.IndicatorInputs{
		Entries:                record.Schedule,
		PropertyValue:          in.PropertyValue,
		DownPayment:            in.DownPayment,
		FinancedAmount:         principal,
		AppraisalFee:           in.AppraisalFee,
		NotarialFee:            in.NotarialFee,
		DisbursementCommission: in.DisbursementCommission,
		RateKind:               in.RateKind,
		InterestRate:           in.InterestRate,
		PeriodicRate:           rate,
	})
	switch {
	case errors.Is(err, loans.ErrNonFinite):
		return nil, c.computationFailed(StageIndicators, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrPreconditionViolation, err)
	}
	record.EffectiveAnnualCostRate = indicators.EffectiveAnnualCostRate
	record.NetPresentValue = indicators.NetPresentValue
	record.InternalRateOfReturn = indicators.InternalRateOfReturn

	c.logger.Debug(fmt.Sprintf("simulated %d periods, installment %.2f, total interest %.2f",
		len(record.Schedule), record.MonthlyInstallment, record.TotalInterest),
		zap.String("op", "simulation.Calculate"),
	)

	return record, nil
}

func (c *Calculator) computationFailed(stage string, err error) error {
	c.logger.Warn("simulation computation failed",
		zap.String("op", "simulation.Calculate"),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return &ComputationError{Stage: stage, Err: err}
}

func outcomeOf(err error) string {
	var validationErr *ValidationError
	var computationErr *ComputationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &validationErr):
		return OutcomeInvalid
	case errors.As(err, &computationErr):
		return OutcomeComputation
	default:
		return OutcomePrecondition
	}
}

// BatchResult is the outcome of one input of CalculateBatch.
type BatchResult struct {
	Index  int
	Record *Record
	Err    error
}

// CalculateBatch calculates every input with a bounded pool of workers.
// Results are returned in input order and carry their own error. Once ctx is
// done, inputs not yet started fail with the context error.
func (c *Calculator) CalculateBatch(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))
	jobs := make(chan int)

	workers := c.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result := BatchResult{Index: i}
				if err := ctx.Err(); err != nil {
					result.Err = err
				} else {
					result.Record, result.Err = c.Calculate(ctx, inputs[i])
				}
				results[i] = result
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	c.logger.Debug(fmt.Sprintf("calculated batch of %d simulations with %d workers", len(inputs), workers),
		zap.String("op", "simulation.CalculateBatch"),
	)

	return results
}
