package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mockmate/internal/model"
)

const (
	historyFile  = "interview_history.json"
	progressFile = "learning_progress.json"
)

type fileHistoryRepo struct {
	dir string
}

// NewFileHistoryRepo persists history as JSON files under dir. This is the
// default backend when no Mongo URI is configured.
func NewFileHistoryRepo(dir string) (HistoryRepo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}
	return &fileHistoryRepo{dir: dir}, nil
}

func (r *fileHistoryRepo) LoadHistory(_ context.Context) ([]model.AnswerRecord, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, historyFile))
	if os.IsNotExist(err) {
		return []model.AnswerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	// Accept both a bare array and the legacy {"data": [...]} wrapper.
	var records []model.AnswerRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Data []model.AnswerRecord `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	// Corrupt state is logged and treated as empty, never surfaced as a crash.
	log.Printf("history file is corrupt, starting empty")
	return []model.AnswerRecord{}, nil
}

func (r *fileHistoryRepo) SaveHistory(_ context.Context, records []model.AnswerRecord) error {
	if records == nil {
		records = []model.AnswerRecord{}
	}
	return r.writeJSON(historyFile, records)
}

func (r *fileHistoryRepo) LoadProgress(_ context.Context) (map[string]model.LearningProgress, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, progressFile))
	if os.IsNotExist(err) {
		return map[string]model.LearningProgress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading progress file: %w", err)
	}

	var progress map[string]model.LearningProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		log.Printf("learning progress file is corrupt, starting empty")
		return map[string]model.LearningProgress{}, nil
	}
	if progress == nil {
		progress = map[string]model.LearningProgress{}
	}
	return progress, nil
}

func (r *fileHistoryRepo) SaveProgress(_ context.Context, progress map[string]model.LearningProgress) error {
	if progress == nil {
		progress = map[string]model.LearningProgress{}
	}
	return r.writeJSON(progressFile, progress)
}

func (r *fileHistoryRepo) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
