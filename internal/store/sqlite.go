package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a Repository backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLiteStore opens the database at dataSourceName and initializes the
// schema.
func NewSQLiteStore(dataSourceName string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}

	logger.Info("database connection established",
		zap.String("op", "store.NewSQLiteStore"),
		zap.String("dsn", dataSourceName),
	)
	return s, nil
}

// initSchema creates the table if it does not exist. Money columns are TEXT
// holding decimal strings so no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		client_id TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL,
		target_program TEXT NOT NULL,
		financial_entity TEXT NOT NULL,
		property_value TEXT NOT NULL,
		down_payment TEXT NOT NULL,
		subsidy_amount TEXT NOT NULL DEFAULT '0',
		financed_amount TEXT NOT NULL,
		rate_kind TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		periodic_rate REAL NOT NULL,
		term_months INTEGER NOT NULL,
		grace_period_months INTEGER NOT NULL DEFAULT 0,
		payment_start_date TEXT NOT NULL,
		life_insurance TEXT NOT NULL DEFAULT '0',
		property_insurance TEXT NOT NULL DEFAULT '0',
		appraisal_fee TEXT NOT NULL DEFAULT '0',
		notarial_fee TEXT NOT NULL DEFAULT '0',
		disbursement_commission TEXT NOT NULL DEFAULT '0',
		monthly_installment TEXT NOT NULL,
		total_interest TEXT NOT NULL,
		tcea TEXT NOT NULL,
		van TEXT NOT NULL,
		tir TEXT NOT NULL,
		schedule TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_simulations_owner ON simulations(owner_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = `id, owner_id, client_id, client_name, target_program, financial_entity,
	property_value, down_payment, subsidy_amount, financed_amount, rate_kind, interest_rate,
	periodic_rate, term_months, grace_period_months, payment_start_date, life_insurance,
	property_insurance, appraisal_fee, notarial_fee, disbursement_commission,
	monthly_installment, total_interest, tcea, van, tir, schedule, created_at, updated_at`

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Save inserts the record, or updates it when a record with the same ID
// already exists for the owner.
func (s *SQLiteStore) Save(ctx context.Context, ownerID string, record *simulation.Record) (*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt time.Time
	exists := false
	if record.ID != uuid.Nil {
		var owner string
		err := tx.QueryRowContext(ctx, `SELECT owner_id, created_at FROM simulations WHERE id = ?`,
			record.ID.String()).Scan(&owner, &createdAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("failed to look up simulation: %w", err)
		case owner != ownerID:
			return nil, ErrForbidden
		default:
			exists = true
		}
	}

	stored := stamp(record, ownerID, createdAt, s.now())
	schedule, err := json.Marshal(stored.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}

	args := []any{
		stored.OwnerID, stored.ClientID, stored.ClientName, stored.TargetProgram, stored.FinancialEntity,
		money(stored.PropertyValue), money(stored.DownPayment), money(stored.SubsidyAmount), money(stored.FinancedAmount),
		string(stored.RateKind), money(stored.InterestRate), stored.PeriodicRate,
		stored.TermMonths, stored.GracePeriodMonths, datetime.FormatDate(stored.PaymentStartDate),
		money(stored.LifeInsurance), money(stored.PropertyInsurance),
		money(stored.AppraisalFee), money(stored.NotarialFee), money(stored.DisbursementCommission),
		money(stored.MonthlyInstallment), money(stored.TotalInterest),
		money(stored.EffectiveAnnualCostRate), money(stored.NetPresentValue), money(stored.InternalRateOfReturn),
		string(schedule), stored.CreatedAt, stored.UpdatedAt,
	}

	if exists {
		_, err = tx.ExecContext(ctx, `UPDATE simulations SET
			owner_id = ?, client_id = ?, client_name = ?, target_program = ?, financial_entity = ?,
			property_value = ?, down_payment = ?, subsidy_amount = ?, financed_amount = ?,
			rate_kind = ?, interest_rate = ?, periodic_rate = ?,
			term_months = ?, grace_period_months = ?, payment_start_date = ?,
			life_insurance = ?, property_insurance = ?,
			appraisal_fee = ?, notarial_fee = ?, disbursement_commission = ?,
			monthly_installment = ?, total_interest = ?, tcea = ?, van = ?, tir = ?,
			schedule = ?, created_at = ?, updated_at = ?
			WHERE id = ?`, append(args, stored.ID.String())...)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO simulations (id, owner_id, client_id, client_name,
			target_program, financial_entity, property_value, down_payment, subsidy_amount,
			financed_amount, rate_kind, interest_rate, periodic_rate, term_months,
			grace_period_months, payment_start_date, life_insurance, property_insurance,
			appraisal_fee, notarial_fee, disbursement_commission, monthly_installment,
			total_interest, tcea, van, tir, schedule, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append([]any{stored.ID.String()}, args...)...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save simulation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit simulation: %w", err)
	}

	s.logger.Debug("simulation stored",
		zap.String("op", "store.Save"),
		zap.String("id", stored.ID.String()),
		zap.Bool("update", exists),
	)
	return stored, nil
}

// FindAll lists the owner's simulations, newest first.
func (s *SQLiteStore) FindAll(ctx context.Context, ownerID string) ([]*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM simulations WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	defer rows.Close()

	records := []*simulation.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	return records, nil
}

// FindByID returns one simulation of the owner.
func (s *SQLiteStore) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*simulation.Record, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM simulations WHERE id = ?`, id.String())
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if record.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return record, nil
}

// Delete removes one simulation of the owner.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	if ownerID == "" {
		return ErrMissingOwner
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM simulations WHERE id = ?`, id.String()).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("failed to look up simulation: %w", err)
	case owner != ownerID:
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM simulations WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete simulation: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*simulation.Record, error) {
	var (
		record                                         simulation.Record
		id, rateKind, startDate, schedule              string
		propertyValue, downPayment, subsidy, financed  decimal.Decimal
		interestRate, lifeInsurance, propertyInsurance decimal.Decimal
		appraisal, notarial, commission                decimal.Decimal
		installment, totalInterest, tcea, van, tir     decimal.Decimal
	)

	err := row.Scan(&id, &record.OwnerID, &record.ClientID, &record.ClientName, &record.TargetProgram,
		&record.FinancialEntity, &propertyValue, &downPayment, &subsidy, &financed, &rateKind,
		&interestRate, &record.PeriodicRate, &record.TermMonths, &record.GracePeriodMonths, &startDate,
		&lifeInsurance, &propertyInsurance, &appraisal, &notarial, &commission,
		&installment, &totalInterest, &tcea, &van, &tir, &schedule, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read simulation: %w", err)
	}

	if record.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid simulation id %q: %w", id, err)
	}
	if record.PaymentStartDate, err = datetime.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("invalid payment start date for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(schedule), &record.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule for %s: %w", id, err)
	}

	record.RateKind = loans.RateKind(rateKind)
	record.PropertyValue = propertyValue.InexactFloat64()
	record.DownPayment = downPayment.InexactFloat64()
	record.SubsidyAmount = subsidy.InexactFloat64()
	record.FinancedAmount = financed.InexactFloat64()
	record.InterestRate = interestRate.InexactFloat64()
	record.LifeInsurance = lifeInsurance.InexactFloat64()
	record.PropertyInsurance = propertyInsurance.InexactFloat64()
	record.AppraisalFee = appraisal.InexactFloat64()
	record.NotarialFee = notarial.InexactFloat64()
	record.DisbursementCommission = commission.InexactFloat64()
	record.MonthlyInstallment = installment.InexactFloat64()
	record.TotalInterest = totalInterest.InexactFloat64()
	record.EffectiveAnnualCostRate = tcea.InexactFloat64()
	record.NetPresentValue = van.InexactFloat64()
	record.InternalRateOfReturn = tir.InexactFloat64()

	return &record, nil
}
