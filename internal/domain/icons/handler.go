package icons

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// maxIconBytes caps icon uploads.
const maxIconBytes = 2 << 20

// Handler exposes the icon catalog over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/icons.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list icons", "error", err)
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Upload handles POST /api/icons (multipart, field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIconBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file")
		return
	}

	name, err := h.service.Upload(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, "Invalid file")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to upload icon", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// Delete handles DELETE /api/icons?name=...
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing name")
		return
	}
	if err := h.service.Delete(r.Context(), name); err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete icon", "error", err)
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
