package markers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Handler exposes the marker operations over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/markers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

type createMarkerRequest struct {
	Lat   float64           `json:"lat"`
	Lng   float64           `json:"lng"`
	Icon  string            `json:"icon"`
	Layer types.MarkerLayer `json:"layer"`
}

// Create handles POST /api/markers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMarkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.service.Add(r.Context(), req.Lat, req.Lng, req.Icon, req.Layer)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to add marker", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Delete handles DELETE /api/markers/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing marker id")
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to remove marker", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
