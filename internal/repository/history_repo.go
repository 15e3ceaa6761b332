package repository

import (
	"context"

	"mockmate/internal/model"
)

// HistoryRepo persists the answer history and the per-topic learning progress.
// Both are stored as whole documents: every mutation rewrites the full record
// list, mirroring how the history service keeps its in-memory copy
// authoritative.
type HistoryRepo interface {
	LoadHistory(ctx context.Context) ([]model.AnswerRecord, error)
	SaveHistory(ctx context.Context, records []model.AnswerRecord) error

	LoadProgress(ctx context.Context) (map[string]model.LearningProgress, error)
	SaveProgress(ctx context.Context, progress map[string]model.LearningProgress) error
}
