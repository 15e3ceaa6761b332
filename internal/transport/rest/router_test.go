package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mockmate/internal/cache"
	"mockmate/internal/config"
	"mockmate/internal/metrics"
	"mockmate/internal/model"
	"mockmate/internal/repository"
	"mockmate/internal/service"
	"mockmate/internal/transport/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"question":"Q1","category":"go","answer":"A1"},
			{"id":2,"question":"Q2","category":"go","answer":"A2"}]`))
	}))
	t.Cleanup(feed.Close)

	repo, err := repository.NewFileHistoryRepo(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileHistoryRepo: %v", err)
	}
	history, err := service.NewHistoryService(context.Background(), repo, 1000)
	if err != nil {
		t.Fatalf("NewHistoryService: %v", err)
	}

	cfg := config.Default().Interview
	m := metrics.NewMetrics()
	questions := service.NewQuestionService(feed.URL, cache.NewMemoryQuestionCache(time.Minute))
	followUps := service.NewFollowUpSelector(cfg.FollowUpMinWords, cfg.FollowUpProbability)
	sessions := service.NewSessionService(questions, service.NewEvaluatorService(), followUps, history, cfg, m)

	hub := ws.NewHub()
	sessions.SetBroadcaster(hub)

	return NewRouter(&Container{
		AuthService:    service.NewAuthService("test-secret"),
		SessionService: sessions,
		HistoryService: history,
		Metrics:        m,
		WSHub:          hub,
	})
}

func createSession(t *testing.T, router http.Handler) model.StartSessionResponse {
	t.Helper()

	body, _ := json.Marshal(model.StartSessionRequest{Topic: "go", Mode: model.ModeInterview})
	req := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/sessions = %d: %s", rec.Code, rec.Body.String())
	}
	var resp model.StartSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestCreateSession(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router)

	if resp.SessionID == "" || resp.Token == "" {
		t.Errorf("response missing id or token: %+v", resp)
	}
	if resp.TotalQuestions != 2 {
		t.Errorf("TotalQuestions = %d, want 2", resp.TotalQuestions)
	}
	if resp.FirstQuestion == nil || resp.FirstQuestion.Question != "Q1" {
		t.Errorf("FirstQuestion = %+v", resp.FirstQuestion)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing topic", `{"mode":"interview"}`, http.StatusBadRequest},
		{"bad mode", `{"topic":"go","mode":"speedrun"}`, http.StatusBadRequest},
		{"garbage body", `{{{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetSessionRequiresToken(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router)

	req := httptest.NewRequest("GET", "/v1/sessions/"+resp.SessionID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/v1/sessions/"+resp.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token status = %d: %s", rec.Code, rec.Body.String())
	}

	var session model.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if session.ID != resp.SessionID {
		t.Errorf("session.ID = %q, want %q", session.ID, resp.SessionID)
	}
}

func TestTokenBoundToSession(t *testing.T) {
	router := newTestRouter(t)
	first := createSession(t, router)
	second := createSession(t, router)

	// A valid token for another session is rejected.
	req := httptest.NewRequest("GET", "/v1/sessions/"+first.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+second.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-session token status = %d, want 403", rec.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router)
	auth := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		return req
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("GET", "/v1/history", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/history = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("GET", "/v1/history/summary", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/history/summary = %d", rec.Code)
	}
	var summary model.HistorySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Count != 0 {
		t.Errorf("summary.Count = %d, want 0", summary.Count)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("DELETE", "/v1/history", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /v1/history = %d", rec.Code)
	}
}

func TestProgressEndpoints(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router)
	auth := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		return req
	}

	body := bytes.NewReader([]byte(`{"questionIndex":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("PUT", "/v1/progress/go", body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /v1/progress/go = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("GET", "/v1/progress/go", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/progress/go = %d", rec.Code)
	}
	var progress model.LearningProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decoding progress: %v", err)
	}
	if progress.LastQuestionIndex != 3 {
		t.Errorf("LastQuestionIndex = %d, want 3", progress.LastQuestionIndex)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, auth(httptest.NewRequest("DELETE", "/v1/progress/go", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /v1/progress/go = %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d", rec.Code)
	}

	createSession(t, router)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /v1/metrics = %d", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	router := newTestRouter(t)
	resp := createSession(t, router)

	req := httptest.NewRequest("DELETE", "/v1/sessions/"+resp.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE = %d: %s", rec.Code, rec.Body.String())
	}

	// The session is gone afterwards.
	req = httptest.NewRequest("GET", "/v1/sessions/"+resp.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rec.Code)
	}
}
