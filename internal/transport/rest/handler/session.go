package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"mockmate/internal/model"
	"mockmate/internal/service"
	"mockmate/internal/transport/rest/middleware"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if req.Mode == "" {
		req.Mode = model.ModeInterview
	}
	if req.Mode != model.ModeInterview && req.Mode != model.ModeLearning {
		writeError(w, http.StatusBadRequest, "mode must be interview or learning")
		return
	}

	session, err := h.sessionSvc.Start(r.Context(), req.Topic, req.Mode)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.GenerateSessionToken(session.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	writeJSON(w, http.StatusCreated, model.StartSessionResponse{
		SessionID:      session.ID,
		Token:          token,
		Status:         session.Status,
		FirstQuestion:  session.CurrentQuestion(),
		TotalQuestions: len(session.Questions),
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.authorized(w, r, id) {
		return
	}

	session, err := h.sessionSvc.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ResetRequest is the request body for resetting a session
type ResetRequest struct {
	ClearHistory bool `json:"clearHistory"`
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.authorized(w, r, id) {
		return
	}

	var req ResetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.sessionSvc.Reset(r.Context(), id, req.ClearHistory)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.authorized(w, r, id) {
		return
	}

	if err := h.sessionSvc.Close(id); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// authorized checks that the caller's token is bound to the session in the
// path.
func (h *SessionHandler) authorized(w http.ResponseWriter, r *http.Request, id string) bool {
	if middleware.GetSessionID(r.Context()) != id {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return false
	}
	return true
}
