package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/interfaces"
	"github.com/ternarybob/snapdiff/internal/services/snapshot"
)

// JobHandler handles job-related API requests
type JobHandler struct {
	service *snapshot.Service
	logger  arbor.ILogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(service *snapshot.Service, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		service: service,
		logger:  logger,
	}
}

// ListRunningHandler returns every job that has not completed
// GET /api/jobs
func (h *JobHandler) ListRunningHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobs, err := h.service.GetRunningJobs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list jobs")
		WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	WriteJSON(w, http.StatusOK, jobs)
}

// ItemHandler returns one job by id
// GET /api/jobs/{id}
func (h *JobHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	job, err := h.service.GetJobByID(r.Context(), id)
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", id).Msg("Failed to get job")
		WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}
