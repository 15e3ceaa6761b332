package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mockmate/internal/model"
)

// QuestionCache caches fetched question sets per topic so repeated session
// starts do not refetch the feed.
type QuestionCache interface {
	Get(ctx context.Context, topic string) ([]model.QuestionRecord, bool, error)
	Set(ctx context.Context, topic string, questions []model.QuestionRecord) error
	Delete(ctx context.Context, topic string) error
}

type questionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuestionCache creates a Redis-backed question cache.
func NewQuestionCache(client *redis.Client, ttl time.Duration) QuestionCache {
	return &questionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *questionCache) key(topic string) string {
	return "questions:" + topic
}

func (c *questionCache) Get(ctx context.Context, topic string) ([]model.QuestionRecord, bool, error) {
	data, err := c.client.Get(ctx, c.key(topic)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var questions []model.QuestionRecord
	if err := json.Unmarshal([]byte(data), &questions); err != nil {
		return nil, false, err
	}
	return questions, true, nil
}

func (c *questionCache) Set(ctx context.Context, topic string, questions []model.QuestionRecord) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(topic), data, c.ttl).Err()
}

func (c *questionCache) Delete(ctx context.Context, topic string) error {
	return c.client.Del(ctx, c.key(topic)).Err()
}
