package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"turath/internal/middleware"
)

type Handler struct {
	service      *Service
	documentsDir string
	async        bool
}

// NewHandler builds the ingestion HTTP surface. When async is true a POST
// /ingest fans chunks out over the queue instead of embedding inline.
func NewHandler(service *Service, documentsDir string, async bool) *Handler {
	return &Handler{service: service, documentsDir: documentsDir, async: async}
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir"`
	}
	// Body is optional; an empty body means the configured documents dir.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = h.documentsDir
	}

	var (
		summary *RunSummary
		err     error
	)
	if h.async {
		summary, err = h.service.EnqueueDir(r.Context(), dir)
	} else {
		summary, err = h.service.RunDir(r.Context(), dir)
	}
	if err != nil {
		slog.Error("ingestion run failed", "dir", dir, "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": summary}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("failed to list documents", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": docs}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "filename is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), filename); err != nil {
		slog.Error("failed to delete document", "filename", filename, "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
