package distance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Handler exposes distance calculations over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type calcRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Calc handles POST /api/distance.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.service.Calc(r.Context(), req.Origin, req.Destination)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "distance calculation failed", "error", err)
		writeError(w, http.StatusBadGateway, "distance calculation failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List handles GET /api/distance.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
