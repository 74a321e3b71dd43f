package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type batchResponse struct {
	Results  []batchItem `json:"results"`
	CSV      string      `json:"csv"`
	Warnings []string    `json:"warnings,omitempty"`
	Duration string      `json:"duration"`
}

type batchItem struct {
	Index      int                  `json:"index"`
	ClientName string               `json:"clientName"`
	Simulation *simulation.FullView `json:"simulation,omitempty"`
	Error      string               `json:"error,omitempty"`
	Errors     []string             `json:"errors,omitempty"`
}

// CalculateBatch runs every simulation of an uploaded config file. Entries
// that fail are reported in place; the request only fails when the file itself
// cannot be read.
func (h *Handler) CalculateBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.CalculateBatch"

	start := time.Now()
	maxUploadSize := h.cfg.UploadSizeBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("upload exceeds limit of %d bytes", maxUploadSize)}, op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("failed to parse upload: %v", err)}, op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: "missing configuration file"}, op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("failed to read configuration: %v", err)}, op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	inputs, results := cfg.CalculateSimulations(r.Context(), h.service.Calculator())

	response := batchResponse{
		Results:  make([]batchItem, 0, len(results)),
		Warnings: warnings,
	}
	records := make([]*simulation.Record, 0, len(results))
	for _, result := range results {
		item := batchItem{Index: result.Index, ClientName: inputs[result.Index].ClientName}
		if result.Err != nil {
			item.Error = result.Err.Error()
			var validationErr *simulation.ValidationError
			if errors.As(result.Err, &validationErr) {
				item.Errors = validationErr.Errors
			}
		} else {
			view := result.Record.Full()
			item.Simulation = &view
			records = append(records, result.Record)
		}
		response.Results = append(response.Results, item)
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, records); err != nil {
		h.logger.Warn("failed to render batch CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	response.CSV = csvBuf.String()

	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("batch computed",
		zap.String("op", op),
		zap.Int("simulations", len(results)),
		zap.Int("succeeded", len(records)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// ExportSimulations serializes the posted simulations as a config file that
// CalculateBatch and the CLI accept.
func (h *Handler) ExportSimulations(w http.ResponseWriter, r *http.Request) {
	const op = "server.ExportSimulations"

	var req exportRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		h.respondSimulationError(w, err, op)
		return
	}

	cfg := config.Configuration{Simulations: make([]config.Simulation, 0, len(req.Simulations))}
	for _, sim := range req.Simulations {
		cfg.Simulations = append(cfg.Simulations, sim.toConfig())
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("failed to encode configuration: %v", err)}, op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}
