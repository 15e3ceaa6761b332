package handler

import (
	"encoding/json"
	"net/http"

	"mockmate/internal/service"
)

// HistoryHandler handles persisted answer history endpoints
type HistoryHandler struct {
	historySvc *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historySvc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// List handles GET /v1/history?language=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	records := h.historySvc.ByLanguage(language)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// Clear handles DELETE /v1/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.historySvc.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Summary handles GET /v1/history/summary
func (h *HistoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.historySvc.Summary())
}

// Dedupe handles POST /v1/history/dedupe
func (h *HistoryHandler) Dedupe(w http.ResponseWriter, r *http.Request) {
	if err := h.historySvc.RemoveDuplicates(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"count":  h.historySvc.Len(),
	})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
