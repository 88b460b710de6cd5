package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/services/snapshot"
)

// CreateBatchRequest is the POST body for a new comparison run.
type CreateBatchRequest struct {
	New string `json:"new" validate:"required,url"`
	Old string `json:"old" validate:"required,url"`
}

// SnapshotHandler handles batch-related API requests
type SnapshotHandler struct {
	service  *snapshot.Service
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service *snapshot.Service, logger arbor.ILogger) *SnapshotHandler {
	return &SnapshotHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// CollectionHandler dispatches /api/snap-shots
// GET lists all batches, POST runs a new comparison
func (h *SnapshotHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBatches(w, r)
	case http.MethodPost:
		h.createBatch(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SnapshotHandler) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.GetAllBatches(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list batches")
		WriteError(w, http.StatusInternalServerError, "Failed to list batches")
		return
	}

	WriteJSON(w, http.StatusOK, batches)
}

func (h *SnapshotHandler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Both new and old must be valid URLs")
		return
	}

	h.logger.Info().Str("new", req.New).Str("old", req.Old).Msg("Starting batch run")

	batch, err := h.service.CreateBatch(r.Context(), req.New, req.Old)
	if err != nil {
		h.logger.Error().Err(err).Msg("Batch run failed")
		WriteError(w, http.StatusInternalServerError, "Batch run failed")
		return
	}

	WriteJSON(w, http.StatusOK, batch)
}

// ItemHandler dispatches /api/snap-shots/{id}
// GET returns one batch, DELETE removes it
func (h *SnapshotHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/snap-shots/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Batch not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getBatch(w, r, id)
	case http.MethodDelete:
		h.deleteBatch(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SnapshotHandler) getBatch(w http.ResponseWriter, r *http.Request, id string) {
	batch, err := h.service.GetBatchByID(r.Context(), id)
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Batch not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("batch_id", id).Msg("Failed to get batch")
		WriteError(w, http.StatusInternalServerError, "Failed to get batch")
		return
	}

	WriteJSON(w, http.StatusOK, batch)
}

func (h *SnapshotHandler) deleteBatch(w http.ResponseWriter, r *http.Request, id string) {
	err := h.service.DeleteBatchByID(r.Context(), id)
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Batch not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("batch_id", id).Msg("Failed to delete batch")
		WriteError(w, http.StatusInternalServerError, "Failed to delete batch")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
