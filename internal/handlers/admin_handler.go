package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/snapdiff/internal/services/snapshot"
)

// AdminHandler handles maintenance API requests
type AdminHandler struct {
	service *snapshot.Service
	logger  arbor.ILogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *snapshot.Service, logger arbor.ILogger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// CleanUpHandler erases all batches, jobs and assets
// GET or POST /api/admin/clean-up
func (h *AdminHandler) CleanUpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.service.CleanUp(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Clean-up failed")
		WriteError(w, http.StatusInternalServerError, "Clean-up failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "All batches, jobs and assets removed",
	})
}
