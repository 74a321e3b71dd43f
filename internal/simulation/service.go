package simulation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrMissingOwner is returned when a save has no owner identity.
var ErrMissingOwner = errors.New("owner identity is required")

// Saver persists a calculated record for an owner.
type Saver interface {
	Save(ctx context.Context, ownerID string, record *Record) (*Record, error)
}

// Service calculates simulations and hands them to persistence.
type Service struct {
	calculator *Calculator
	saver      Saver
	logger     *zap.Logger
}

// NewService creates a Service.
func NewService(calculator *Calculator, saver Saver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{calculator: calculator, saver: saver, logger: logger}
}

// Calculator returns the calculator backing the service.
func (s *Service) Calculator() *Calculator {
	return s.calculator
}

// Save validates and calculates the input, then persists the record for
// ownerID. Nothing is stored when validation or calculation fails.
func (s *Service) Save(ctx context.Context, ownerID string, in Input) (*Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	record, err := s.calculator.Calculate(ctx, in)
	if err != nil {
		return nil, err
	}

	saved, err := s.saver.Save(ctx, ownerID, record)
	if err != nil {
		return nil, fmt.Errorf("saving simulation: %w", err)
	}

	s.logger.Info("simulation saved",
		zap.String("op", "simulation.Save"),
		zap.String("id", saved.ID.String()),
		zap.String("owner", ownerID),
	)
	return saved, nil
}
