package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"mockmate/internal/cache"
	"mockmate/internal/model"
)

// Built-in question sets used when the feed is unreachable or returns an
// unusable payload. Unrecognized topics fall back to an empty set.
var fallbackQuestions = map[string][]model.QuestionRecord{
	"c": {
		{
			ID:       1,
			Question: "What is the difference between `==` and `.Equals()` in C#?",
			Category: "csharp",
			Answer:   "`==` is an operator that compares references for reference types and values for value types. `.Equals()` is a virtual method that typically compares values.",
		},
		{
			ID:       2,
			Question: "Explain boxing and unboxing with examples.",
			Category: "csharp",
			Answer:   "Boxing is converting a value type to object type (heap allocation). Unboxing is converting object type back to value type.",
		},
	},
	"react": {
		{
			ID:       1,
			Question: "What is the difference between state and props?",
			Category: "react",
			Answer:   "State is internal mutable data, props are external immutable data passed from parent components.",
		},
	},
	"javascript": {
		{
			ID:       1,
			Question: "What is the difference between let, const, and var?",
			Category: "javascript",
			Answer:   "var is function-scoped, let and const are block-scoped. const cannot be reassigned.",
		},
	},
	"python": {
		{
			ID:       1,
			Question: "What are Python decorators and how do you use them?",
			Category: "python",
			Answer:   "Decorators are functions that modify the behavior of other functions without changing their code.",
		},
	},
}

// QuestionService loads question sets from the static feed, normalizing the
// payload into the canonical record slice at the boundary.
type QuestionService struct {
	baseURL string
	cache   cache.QuestionCache
	client  *http.Client
}

// NewQuestionService creates a question service. An empty baseURL disables
// fetching; only the built-in sets are served.
func NewQuestionService(baseURL string, questionCache cache.QuestionCache) *QuestionService {
	return &QuestionService{
		baseURL: baseURL,
		cache:   questionCache,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Load returns the question set for a topic, consulting the cache first and
// falling back to the built-in sets when the feed fails. Fallbacks are cached
// too, so a broken feed is not re-fetched on every session start.
func (s *QuestionService) Load(ctx context.Context, topic string) ([]model.QuestionRecord, error) {
	if cached, ok, err := s.cache.Get(ctx, topic); err != nil {
		log.Printf("question cache read failed for %s: %v", topic, err)
	} else if ok {
		return cached, nil
	}

	questions, err := s.fetch(ctx, topic)
	if err != nil {
		log.Printf("question feed failed for %s, using fallback: %v", topic, err)
		questions = fallbackQuestions[topic]
		if questions == nil {
			questions = []model.QuestionRecord{}
		}
	}

	if err := s.cache.Set(ctx, topic, questions); err != nil {
		log.Printf("question cache write failed for %s: %v", topic, err)
	}
	return questions, nil
}

func (s *QuestionService) fetch(ctx context.Context, topic string) ([]model.QuestionRecord, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("no question feed configured")
	}

	url := fmt.Sprintf("%s/questions/%s.json", s.baseURL, topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return normalizeQuestions(body)
}

// normalizeQuestions converts the feed payload into the canonical slice. Only
// a bare array or a {"data": [...]} wrapper is accepted; anything else is an
// error rather than a silent coercion.
func normalizeQuestions(body []byte) ([]model.QuestionRecord, error) {
	var records []model.QuestionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		var wrapped struct {
			Data []model.QuestionRecord `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Data == nil {
			return nil, fmt.Errorf("malformed question payload")
		}
		records = wrapped.Data
	}

	valid := records[:0]
	for _, q := range records {
		if q.ID == 0 || q.Question == "" || q.Answer == "" {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) != len(records) {
		log.Printf("dropped %d malformed question records", len(records)-len(valid))
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid questions in payload")
	}
	return valid, nil
}
