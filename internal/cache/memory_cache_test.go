package cache

import (
	"context"
	"testing"
	"time"

	"mockmate/internal/model"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryQuestionCache(time.Minute)
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "go"); ok {
		t.Fatal("hit on empty cache")
	}

	questions := []model.QuestionRecord{{ID: 1, Question: "Q", Answer: "A"}}
	if err := c.Set(ctx, "go", questions); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, "go")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if len(got) != 1 || got[0].Question != "Q" {
		t.Errorf("Get = %+v", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryQuestionCache(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "go", []model.QuestionRecord{{ID: 1, Question: "Q", Answer: "A"}})
	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "go"); ok {
		t.Error("hit on expired entry")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryQuestionCache(time.Minute)
	ctx := context.Background()

	c.Set(ctx, "go", []model.QuestionRecord{{ID: 1, Question: "Q", Answer: "A"}})
	if err := c.Delete(ctx, "go"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "go"); ok {
		t.Error("hit after delete")
	}
}
