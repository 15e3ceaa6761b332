package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mockmate/internal/service"
)

// ProgressHandler handles learning-mode resume position endpoints
type ProgressHandler struct {
	historySvc *service.HistoryService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(historySvc *service.HistoryService) *ProgressHandler {
	return &ProgressHandler{historySvc: historySvc}
}

// Get handles GET /v1/progress/{topic}
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	writeJSON(w, http.StatusOK, h.historySvc.GetLearningProgress(topic))
}

// UpdateProgressRequest is the request body for setting a resume position
type UpdateProgressRequest struct {
	QuestionIndex int `json:"questionIndex"`
}

// Update handles PUT /v1/progress/{topic}
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionIndex < 0 {
		writeError(w, http.StatusBadRequest, "questionIndex must be non-negative")
		return
	}

	if err := h.historySvc.UpdateLearningProgress(r.Context(), topic, req.QuestionIndex); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.historySvc.GetLearningProgress(topic))
}

// Delete handles DELETE /v1/progress/{topic}
func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if err := h.historySvc.ResetLearningProgress(r.Context(), topic); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// DeleteAll handles DELETE /v1/progress
func (h *ProgressHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.historySvc.ClearAllLearningProgress(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
