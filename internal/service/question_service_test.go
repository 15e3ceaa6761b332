package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mockmate/internal/cache"
)

func newQuestionCache() cache.QuestionCache {
	return cache.NewMemoryQuestionCache(time.Minute)
}

func TestLoadFromFeed(t *testing.T) {
	body := `[
		{"id":1,"question":"What is a goroutine?","category":"go","answer":"A lightweight thread."},
		{"id":2,"question":"What is a channel?","category":"go","answer":"A typed conduit."}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/questions/go.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	svc := NewQuestionService(srv.URL, newQuestionCache())
	questions, err := svc.Load(context.Background(), "go")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Question != "What is a goroutine?" {
		t.Errorf("first question = %q", questions[0].Question)
	}
}

func TestLoadWrappedPayload(t *testing.T) {
	body := `{"data":[{"id":1,"question":"Q","category":"go","answer":"A"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	svc := NewQuestionService(srv.URL, newQuestionCache())
	questions, err := svc.Load(context.Background(), "go")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(questions))
	}
}

func TestLoadFiltersMalformedRecords(t *testing.T) {
	body := `[
		{"id":1,"question":"Valid","category":"go","answer":"A"},
		{"id":0,"question":"Missing id","category":"go","answer":"A"},
		{"id":3,"question":"","category":"go","answer":"A"},
		{"id":4,"question":"Missing answer","category":"go","answer":""}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	svc := NewQuestionService(srv.URL, newQuestionCache())
	questions, err := svc.Load(context.Background(), "go")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "Valid" {
		t.Errorf("got %+v, want only the valid record", questions)
	}
}

func TestLoadFallbackOnFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewQuestionService(srv.URL, newQuestionCache())
	questions, err := svc.Load(context.Background(), "react")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("got %d questions, want the built-in react set", len(questions))
	}
	if questions[0].Category != "react" {
		t.Errorf("fallback category = %q, want react", questions[0].Category)
	}
}

func TestLoadFallbackUnknownTopic(t *testing.T) {
	svc := NewQuestionService("", newQuestionCache())
	questions, err := svc.Load(context.Background(), "fortran")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("got %d questions for unknown topic, want 0", len(questions))
	}
}

func TestLoadServesFromCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"id":1,"question":"Q","category":"go","answer":"A"}]`))
	}))
	defer srv.Close()

	svc := NewQuestionService(srv.URL, newQuestionCache())
	ctx := context.Background()
	if _, err := svc.Load(ctx, "go"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := svc.Load(ctx, "go"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls != 1 {
		t.Errorf("feed hit %d times, want 1", calls)
	}
}

func TestNormalizeQuestionsRejectsGarbage(t *testing.T) {
	for _, body := range []string{`{"not":"questions"}`, `"string"`, `[]`} {
		if _, err := normalizeQuestions([]byte(body)); err == nil {
			t.Errorf("normalizeQuestions(%s) = nil error, want failure", body)
		}
	}
}
