package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/catalog"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/internal/store"
	"go.uber.org/zap"
)

// CalculateSimulation runs the pipeline on the request body and returns the
// calculated record without storing it.
func (h *Handler) CalculateSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.CalculateSimulation"

	in, ok := h.decodeInput(w, r, op)
	if !ok {
		return
	}

	record, err := h.service.Calculator().Calculate(r.Context(), in)
	if err != nil {
		h.respondSimulationError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, record.Full())
}

// SaveSimulation calculates the request body and stores it for the caller.
func (h *Handler) SaveSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.SaveSimulation"

	in, ok := h.decodeInput(w, r, op)
	if !ok {
		return
	}

	record, err := h.service.Save(r.Context(), ownerID(r), in)
	if err != nil {
		h.respondSimulationError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusCreated, record.Full())
}

// ListSimulations returns the caller's saved simulations, newest first.
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.FindAll(r.Context(), ownerID(r))
	if err != nil {
		h.respondSimulationError(w, err, "server.ListSimulations")
		return
	}

	views := make([]simulation.FullView, 0, len(records))
	for _, record := range records {
		views = append(views, record.Full())
	}
	h.writeJSON(w, http.StatusOK, views)
}

// GetSimulation returns one saved simulation.
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.GetSimulation"

	id, ok := h.parseID(w, r, op)
	if !ok {
		return
	}

	record, err := h.repo.FindByID(r.Context(), ownerID(r), id)
	if err != nil {
		h.respondSimulationError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, record.Full())
}

// DeleteSimulation removes one saved simulation.
func (h *Handler) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.DeleteSimulation"

	id, ok := h.parseID(w, r, op)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), ownerID(r), id); err != nil {
		h.respondSimulationError(w, err, op)
		return
	}

	h.logger.Info("simulation deleted",
		zap.String("op", op),
		zap.String("id", id.String()),
		zap.String("owner", ownerID(r)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// ListFinancialEntities returns the lender catalog.
func (h *Handler) ListFinancialEntities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalog.FinancialEntities())
}

// ListHousingPrograms returns the housing program catalog.
func (h *Handler) ListHousingPrograms(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalog.HousingPrograms())
}

// Version reports the server version for UI metadata.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.cfg.Version,
	})
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request, op string) (simulation.Input, bool) {
	var req simulationRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		h.respondSimulationError(w, err, op)
		return simulation.Input{}, false
	}

	in, err := req.toInput()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, op)
		return simulation.Input{}, false
	}
	return in, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: "invalid simulation id"}, op)
		return uuid.Nil, false
	}
	return id, true
}

// respondSimulationError maps pipeline and store errors onto a status and
// an error body.
func (h *Handler) respondSimulationError(w http.ResponseWriter, err error, op string) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var reqErr *requestError
	var validationErr *simulation.ValidationError
	var computationErr *simulation.ComputationError
	switch {
	case errors.As(err, &reqErr):
		resp.Details = reqErr.details
	case errors.As(err, &validationErr):
		resp.Error = "simulation is not valid"
		resp.Errors = validationErr.Errors
	case errors.As(err, &computationErr):
		resp.Stage = computationErr.Stage
	}

	h.respondErrorWithOp(w, status, resp, op)
}

func statusFor(err error) int {
	var reqErr *requestError
	var validationErr *simulation.ValidationError
	var computationErr *simulation.ComputationError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.As(err, &validationErr), errors.As(err, &computationErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrMissingOwner):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
