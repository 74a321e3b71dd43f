// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-simulator/internal/catalog"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-simulator.
type Configuration struct {
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
	Storage     StorageConfig `yaml:"storage,omitempty"`
	Server      ServerConfig  `yaml:"server,omitempty"`
	Tracing     TracingConfig `yaml:"tracing,omitempty"`
	Batch       BatchConfig   `yaml:"batch,omitempty"`
	Simulations []Simulation  `yaml:"simulations,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// StorageConfig selects where saved simulations live.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"` // sqlite, memory
	DSN    string `yaml:"dsn,omitempty"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address        string   `yaml:"address,omitempty"`
	MaxUploadSize  string   `yaml:"maxUploadSize,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// TracingConfig holds the OpenTelemetry exporter settings. An empty endpoint
// disables export.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
	ServiceName string `yaml:"serviceName,omitempty"`
}

// BatchConfig sizes the batch calculation worker pool.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("storage.driver", constants.StorageDriverSQLite)
	v.SetDefault("storage.dsn", constants.DefaultSQLiteDSN)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.version", "dev")
	v.SetDefault("tracing.serviceName", constants.DefaultServiceName)
	v.SetDefault("batch.workers", constants.DefaultBatchWorkers)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file next to the config is loaded first so its
// variables can override config values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := LoadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		dateToStringHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&configuration, hook); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// dateToStringHook keeps unquoted YAML dates, which the YAML reader turns into
// time.Time, usable for string fields such as paymentStartDate.
func dateToStringHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	t, ok := data.(time.Time)
	if !ok {
		return data, nil
	}
	return t.Format(datetime.DateLayout), nil
}

// LoadDotEnv loads environment variables from the given files. Missing files
// are skipped and variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Output.Format {
	case "", constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown output format %q, falling back to %s",
			c.Output.Format, constants.OutputFormatPretty))
	}

	switch c.Storage.Driver {
	case "", constants.StorageDriverSQLite, constants.StorageDriverMemory:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Batch.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("batch workers %d is negative, using %d",
			c.Batch.Workers, constants.DefaultBatchWorkers))
	}

	if len(c.Simulations) == 0 {
		warnings = append(warnings, "no simulations configured")
	}

	validator := validation.ConfigValidator{
		Simulations: make([]validation.SimulationConfig, 0, len(c.Simulations)),
	}
	for i, sim := range c.Simulations {
		validator.Simulations = append(validator.Simulations, validation.SimulationConfig{
			Name:              sim.label(i),
			PaymentStartDate:  sim.PaymentStartDate,
			TermMonths:        sim.TermMonths,
			GracePeriodMonths: sim.GracePeriodMonths,
			PropertyValue:     sim.PropertyValue,
			DownPayment:       sim.DownPayment,
			SubsidyAmount:     sim.SubsidyAmount,
		})
	}
	warnings = append(warnings, validator.ValidateAll()...)

	entities := catalog.FinancialEntities()
	programs := catalog.HousingPrograms()
	for i, sim := range c.Simulations {
		if sim.FinancialEntity != "" && !catalog.Contains(entities, sim.FinancialEntity) {
			warnings = append(warnings, fmt.Sprintf("simulation %s: financial entity %q is not in the catalog",
				sim.label(i), sim.FinancialEntity))
		}
		if sim.TargetProgram != "" && !catalog.Contains(programs, sim.TargetProgram) {
			warnings = append(warnings, fmt.Sprintf("simulation %s: housing program %q is not in the catalog",
				sim.label(i), sim.TargetProgram))
		}
	}

	return warnings
}
