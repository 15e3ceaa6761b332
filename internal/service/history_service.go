package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"mockmate/internal/model"
	"mockmate/internal/repository"
)

// HistoryService owns the persisted answer history: deduplication, the FIFO
// size cap, aggregate statistics and the learning-mode resume positions. The
// in-memory copy mirrors the persisted state; every mutation writes the full
// list back through the repository before returning.
type HistoryService struct {
	repo  repository.HistoryRepo
	limit int

	mu       sync.RWMutex
	records  []model.AnswerRecord
	progress map[string]model.LearningProgress
}

// NewHistoryService loads the persisted state and returns the service.
func NewHistoryService(ctx context.Context, repo repository.HistoryRepo, limit int) (*HistoryService, error) {
	records, err := repo.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	progress, err := repo.LoadProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading learning progress: %w", err)
	}

	return &HistoryService{
		repo:     repo,
		limit:    limit,
		records:  records,
		progress: progress,
	}, nil
}

// Add appends one record. A record whose lowercased question/answer pair is
// already present is silently dropped.
func (s *HistoryService) Add(ctx context.Context, record model.AnswerRecord) error {
	return s.BatchAdd(ctx, []model.AnswerRecord{record})
}

// BatchAdd appends multiple records in one persisted write, dropping
// duplicates against both the stored history and the batch itself. The list
// is then trimmed to the most recent limit entries, oldest first.
func (s *HistoryService) BatchAdd(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.records))
	for i := range s.records {
		seen[s.records[i].Identifier()] = struct{}{}
	}

	added := 0
	for i := range records {
		id := records[i].Identifier()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.records = append(s.records, records[i])
		added++
	}
	if added == 0 {
		return nil
	}

	if len(s.records) > s.limit {
		s.records = append([]model.AnswerRecord(nil), s.records[len(s.records)-s.limit:]...)
	}

	return s.repo.SaveHistory(ctx, s.records)
}

// Clear removes all history records.
func (s *HistoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = []model.AnswerRecord{}
	return s.repo.SaveHistory(ctx, s.records)
}

// Records returns a copy of the stored history, oldest first.
func (s *HistoryService) Records() []model.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AnswerRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *HistoryService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ByLanguage returns the records for one topic, or everything when topic is
// empty.
func (s *HistoryService) ByLanguage(topic string) []model.AnswerRecord {
	if topic == "" {
		return s.Records()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AnswerRecord
	for _, r := range s.records {
		if strings.EqualFold(r.Language, topic) {
			out = append(out, r)
		}
	}
	return out
}

// OverallScore is the arithmetic mean of the valid performance scores (0-100),
// rounded to one decimal. Returns 0 when no record carries a valid score.
func (s *HistoryService) OverallScore() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	valid := 0
	for _, r := range s.records {
		if r.PerformanceScore >= 0 && r.PerformanceScore <= 100 {
			total += r.PerformanceScore
			valid++
		}
	}
	if valid == 0 {
		return 0
	}

	avg := math.Round(total/float64(valid)*10) / 10
	return math.Min(100, math.Max(0, avg))
}

// TotalDuration sums the answer durations in seconds.
func (s *HistoryService) TotalDuration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, r := range s.records {
		total += r.Duration
	}
	return total
}

// Summary bundles the aggregate statistics.
func (s *HistoryService) Summary() model.HistorySummary {
	return model.HistorySummary{
		OverallScore:  s.OverallScore(),
		TotalDuration: s.TotalDuration(),
		Count:         s.Len(),
	}
}

// RemoveDuplicates compacts the history keeping the first occurrence of each
// question/answer pair.
func (s *HistoryService) RemoveDuplicates(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.records))
	unique := s.records[:0]
	for i := range s.records {
		id := s.records[i].Identifier()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, s.records[i])
	}
	s.records = unique
	return s.repo.SaveHistory(ctx, s.records)
}

// GetLearningProgress returns the stored resume position for a topic, or the
// zero position when none exists.
func (s *HistoryService) GetLearningProgress(topic string) model.LearningProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress[topic]
}

// UpdateLearningProgress records the resume position for a topic.
func (s *HistoryService) UpdateLearningProgress(ctx context.Context, topic string, questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.progress[topic] = model.LearningProgress{
		LastQuestionIndex: questionIndex,
		LastUpdated:       &now,
	}
	return s.repo.SaveProgress(ctx, s.progress)
}

// ResetLearningProgress forgets the resume position for one topic.
func (s *HistoryService) ResetLearningProgress(ctx context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.progress, topic)
	return s.repo.SaveProgress(ctx, s.progress)
}

// ClearAllLearningProgress forgets every topic's resume position.
func (s *HistoryService) ClearAllLearningProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = map[string]model.LearningProgress{}
	return s.repo.SaveProgress(ctx, s.progress)
}
