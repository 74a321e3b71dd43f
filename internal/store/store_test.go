package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func calculatedRecord(t *testing.T, clientName string) *simulation.Record {
	t.Helper()
	record, err := simulation.NewCalculator(nil).Calculate(context.Background(), simulation.Input{
		ClientID:               "client-001",
		ClientName:             clientName,
		TargetProgram:          "miVivienda",
		FinancialEntity:        "interbank",
		PropertyValue:          250000,
		DownPayment:            25000,
		SubsidyAmount:          12500.5,
		RateKind:               loans.AnnualEffective,
		InterestRate:           9.5,
		TermMonths:             24,
		GracePeriodMonths:      2,
		PaymentStartDate:       datetime.MustParseDate("2025-03-31"),
		LifeInsurance:          35.12,
		PropertyInsurance:      20,
		AppraisalFee:           300,
		NotarialFee:            450.75,
		DisbursementCommission: 100,
	})
	require.NoError(t, err)
	return record
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	sqliteStore.now = steppingClock()
	t.Cleanup(func() { sqliteStore.Close() })

	memoryStore := NewMemoryStore()
	memoryStore.now = steppingClock()

	return map[string]Repository{
		"sqlite": sqliteStore,
		"memory": memoryStore,
	}
}

func TestSaveAndFindByID(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := calculatedRecord(t, "Ana Torres")

			saved, err := repo.Save(ctx, "user-1", record)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, saved.ID)
			assert.Equal(t, "user-1", saved.OwnerID)
			assert.False(t, saved.CreatedAt.IsZero())
			assert.Equal(t, uuid.Nil, record.ID, "Save must not mutate the caller's record")

			found, err := repo.FindByID(ctx, "user-1", saved.ID)
			require.NoError(t, err)

			assert.Equal(t, saved.ID, found.ID)
			assert.Equal(t, record.Input.ClientName, found.ClientName)
			assert.Equal(t, record.RateKind, found.RateKind)
			assert.True(t, record.PaymentStartDate.Equal(found.PaymentStartDate))
			assert.Equal(t, record.SubsidyAmount, found.SubsidyAmount)
			assert.Equal(t, record.NotarialFee, found.NotarialFee)
			assert.Equal(t, record.FinancedAmount, found.FinancedAmount)
			assert.Equal(t, record.PeriodicRate, found.PeriodicRate)
			assert.Equal(t, record.MonthlyInstallment, found.MonthlyInstallment)
			assert.Equal(t, record.TotalInterest, found.TotalInterest)
			assert.Equal(t, record.EffectiveAnnualCostRate, found.EffectiveAnnualCostRate)
			assert.Equal(t, record.NetPresentValue, found.NetPresentValue)
			assert.Equal(t, record.InternalRateOfReturn, found.InternalRateOfReturn)
			assert.Equal(t, record.Schedule, found.Schedule)
			assert.WithinDuration(t, saved.CreatedAt, found.CreatedAt, time.Millisecond)
		})
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := calculatedRecord(t, "Ana Torres")
			interest := record.Schedule[0].Interest

			saved, err := repo.Save(ctx, "user-1", record)
			require.NoError(t, err)
			saved.Schedule[0].Interest = 111

			found, err := repo.FindByID(ctx, "user-1", saved.ID)
			require.NoError(t, err)
			assert.Equal(t, interest, found.Schedule[0].Interest)
			found.Schedule[0].Interest = 999

			all, err := repo.FindAll(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, interest, all[0].Schedule[0].Interest)
			all[0].Schedule[0].Interest = 555

			again, err := repo.FindByID(ctx, "user-1", saved.ID)
			require.NoError(t, err)
			assert.Equal(t, interest, again.Schedule[0].Interest)
		})
	}
}

func TestFindAllNewestFirst(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, client := range []string{"first", "second", "third"} {
				_, err := repo.Save(ctx, "user-1", calculatedRecord(t, client))
				require.NoError(t, err)
			}
			_, err := repo.Save(ctx, "user-2", calculatedRecord(t, "other owner"))
			require.NoError(t, err)

			records, err := repo.FindAll(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, records, 3)

			names := []string{records[0].ClientName, records[1].ClientName, records[2].ClientName}
			assert.Equal(t, []string{"third", "second", "first"}, names)

			empty, err := repo.FindAll(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			saved, err := repo.Save(ctx, "user-1", calculatedRecord(t, "Ana Torres"))
			require.NoError(t, err)

			_, err = repo.FindByID(ctx, "user-2", saved.ID)
			assert.ErrorIs(t, err, ErrForbidden)

			err = repo.Delete(ctx, "user-2", saved.ID)
			assert.ErrorIs(t, err, ErrForbidden)

			_, err = repo.Save(ctx, "user-2", saved)
			assert.ErrorIs(t, err, ErrForbidden)

			_, err = repo.FindByID(ctx, "", saved.ID)
			assert.ErrorIs(t, err, ErrMissingOwner)

			_, err = repo.Save(ctx, "", saved)
			assert.ErrorIs(t, err, ErrMissingOwner)
		})
	}
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			saved, err := repo.Save(ctx, "user-1", calculatedRecord(t, "Ana Torres"))
			require.NoError(t, err)

			saved.ClientName = "Ana María Torres"
			updated, err := repo.Save(ctx, "user-1", saved)
			require.NoError(t, err)

			assert.Equal(t, saved.ID, updated.ID)
			assert.WithinDuration(t, saved.CreatedAt, updated.CreatedAt, time.Millisecond)
			assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))

			records, err := repo.FindAll(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "Ana María Torres", records[0].ClientName)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			saved, err := repo.Save(ctx, "user-1", calculatedRecord(t, "Ana Torres"))
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, "user-1", saved.ID))

			_, err = repo.FindByID(ctx, "user-1", saved.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			err = repo.Delete(ctx, "user-1", saved.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "simulations.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dsn, nil)
	require.NoError(t, err)
	saved, err := first.Save(ctx, "user-1", calculatedRecord(t, "Ana Torres"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dsn, nil)
	require.NoError(t, err)
	defer second.Close()

	found, err := second.FindByID(ctx, "user-1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.MonthlyInstallment, found.MonthlyInstallment)
	assert.Len(t, found.Schedule, 24)
}

func TestOpen(t *testing.T) {
	repo, err := Open(Config{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, repo)

	repo, err = Open(Config{Driver: "sqlite", DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(Config{Driver: "postgres"}, nil)
	assert.Error(t, err)
}

func TestServiceSavesThroughRepository(t *testing.T) {
	repo := NewMemoryStore()
	svc := simulation.NewService(simulation.NewCalculator(nil), repo, nil)

	input := calculatedRecord(t, "Ana Torres").Input
	saved, err := svc.Save(context.Background(), "user-1", input)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), "user-1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.MonthlyInstallment, found.MonthlyInstallment)
}
