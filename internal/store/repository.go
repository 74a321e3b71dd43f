// Package store persists calculated simulations per owner.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no simulation has the requested ID.
	ErrNotFound = errors.New("simulation not found")

	// ErrForbidden is returned when a simulation belongs to another owner.
	ErrForbidden = errors.New("simulation belongs to another owner")

	// ErrMissingOwner is returned when an owner-scoped call has no owner.
	ErrMissingOwner = simulation.ErrMissingOwner
)

// Repository stores simulations. Every call is scoped to an owner identity
// supplied by the caller.
type Repository interface {
	// Save stores a copy of record for ownerID, assigning an ID when the
	// record has none, and returns the stored copy.
	Save(ctx context.Context, ownerID string, record *simulation.Record) (*simulation.Record, error)
	// FindAll lists the owner's simulations, newest first.
	FindAll(ctx context.Context, ownerID string) ([]*simulation.Record, error)
	FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*simulation.Record, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Close() error
}

// Config selects and configures a Repository implementation.
type Config struct {
	Driver string
	DSN    string
}

// Open builds the Repository named by cfg.Driver.
func Open(cfg Config, logger *zap.Logger) (Repository, error) {
	switch cfg.Driver {
	case constants.StorageDriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = constants.DefaultSQLiteDSN
		}
		return NewSQLiteStore(dsn, logger)
	case constants.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// stamp returns the copy of record that gets stored: owner and timestamps set,
// an ID assigned when missing. createdAt is kept when the record already
// existed.
func stamp(record *simulation.Record, ownerID string, createdAt, now time.Time) *simulation.Record {
	stored := *record
	stored.Schedule = append(stored.Schedule[:0:0], record.Schedule...)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.OwnerID = ownerID
	if createdAt.IsZero() {
		createdAt = now
	}
	stored.CreatedAt = createdAt
	stored.UpdatedAt = now
	return &stored
}
