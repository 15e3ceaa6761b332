package cache

import (
	"context"
	"sync"
	"time"

	"mockmate/internal/model"
)

type memoryEntry struct {
	questions []model.QuestionRecord
	expiresAt time.Time
}

type memoryQuestionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryQuestionCache creates an in-process question cache. Used when no
// Redis address is configured, and in tests.
func NewMemoryQuestionCache(ttl time.Duration) QuestionCache {
	return &memoryQuestionCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (c *memoryQuestionCache) Get(_ context.Context, topic string) ([]model.QuestionRecord, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[topic]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.questions, true, nil
}

func (c *memoryQuestionCache) Set(_ context.Context, topic string, questions []model.QuestionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[topic] = memoryEntry{
		questions: questions,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

func (c *memoryQuestionCache) Delete(_ context.Context, topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, topic)
	return nil
}
