package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/logging"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	workers := conf.Batch.Workers
	if workers <= 0 {
		workers = constants.DefaultBatchWorkers
	}
	calc := simulation.NewCalculator(logger, simulation.WithWorkers(workers))

	// Run every simulation; failures are reported and skipped.
	inputs, results := conf.CalculateSimulations(context.Background(), calc)
	records := make([]*simulation.Record, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			logSimulationError(logger, inputs[result.Index], result.Err)
			continue
		}
		records = append(records, result.Record)
	}

	// Handle output.
	if err := output.Write(os.Stdout, outputFormat, records); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if len(records) < len(inputs) {
		_ = logger.Sync()
		os.Exit(2)
	}
}

func logSimulationError(logger *zap.Logger, in simulation.Input, err error) {
	fields := []zap.Field{
		zap.String("op", "main"),
		zap.String("client", in.ClientName),
	}

	var validationErr *simulation.ValidationError
	var computationErr *simulation.ComputationError
	switch {
	case errors.As(err, &validationErr):
		logger.Error("simulation is not valid", append(fields, zap.Strings("errors", validationErr.Errors))...)
	case errors.As(err, &computationErr):
		logger.Error("simulation produced a non-finite value", append(fields, zap.String("stage", computationErr.Stage), zap.Error(err))...)
	default:
		logger.Error("failed to calculate simulation", append(fields, zap.Error(err))...)
	}
}
