// Package constants provides shared constants for the mortgage-simulator application.
package constants

// DateLayout is the calendar date format expected in config files and API
// payloads, and is also the output date format for schedule due dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// VANAnnualDiscountRate is the fixed nominal annual rate used to discount
	// installments when computing the net present value. It is a policy
	// constant and is never derived from the loan's own rate.
	VANAnnualDiscountRate = 0.10
)

// Rate kinds accepted by the rate converter.
const (
	// RateKindAnnualEffective marks an effective annual rate (TEA).
	RateKindAnnualEffective = "ANNUAL_EFFECTIVE"

	// RateKindMonthlyEffective marks an effective monthly rate (TEM).
	RateKindMonthlyEffective = "MONTHLY_EFFECTIVE"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON emits the full simulation records as JSON
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. MORTGAGE_SIM_LOGGING_LEVEL
	EnvPrefix = "MORTGAGE_SIM"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// OwnerHeader carries the acting user's id on owner-scoped API routes.
	OwnerHeader = "X-User-ID"
)

// Storage and batch defaults
const (
	// StorageDriverSQLite selects the SQLite-backed repository
	StorageDriverSQLite = "sqlite"

	// StorageDriverMemory selects the in-memory repository
	StorageDriverMemory = "memory"

	// DefaultSQLiteDSN is the default SQLite database file
	DefaultSQLiteDSN = "simulations.db"

	// DefaultBatchWorkers is the default number of concurrent batch workers
	DefaultBatchWorkers = 4

	// DefaultServiceName identifies the service in traces and metrics
	DefaultServiceName = "mortgage-simulator"
)
