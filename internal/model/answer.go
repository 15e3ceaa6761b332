package model

import (
	"strings"
	"time"
)

// EmotionalTone is the coarse tone classification attached to an answer.
type EmotionalTone string

const (
	ToneNeutral      EmotionalTone = "neutral"
	TonePositive     EmotionalTone = "positive"
	ToneConcerned    EmotionalTone = "concerned"
	ToneProfessional EmotionalTone = "professional"
)

// AnswerRecord is one evaluated answer. Scores use a 0-100 scale throughout.
type AnswerRecord struct {
	Question         string        `json:"question" bson:"question"`
	Answer           string        `json:"answer" bson:"answer"`
	Feedback         string        `json:"feedback" bson:"feedback"`
	Timestamp        time.Time     `json:"timestamp" bson:"timestamp"`
	Duration         int           `json:"duration" bson:"duration"` // seconds
	PerformanceScore float64       `json:"performanceScore" bson:"performanceScore"`
	ConfidenceLevel  int           `json:"confidenceLevel" bson:"confidenceLevel"`
	EmotionalTone    EmotionalTone `json:"emotionalTone" bson:"emotionalTone"`
	WordCount        int           `json:"wordCount" bson:"wordCount"`
	Language         string        `json:"language" bson:"language"` // topic identifier
}

// Identifier is the deduplication key for history storage: two records with the
// same lowercased question/answer pair are considered the same answer.
func (r *AnswerRecord) Identifier() string {
	return strings.ToLower(r.Question + "-" + r.Answer)
}

// Evaluation is the output of the answer evaluator.
type Evaluation struct {
	Feedback         string  `json:"feedback"`
	PerformanceScore float64 `json:"performanceScore"`
	ConfidenceLevel  int     `json:"confidenceLevel"`
}

// ContentAnalysis describes the structural signals extracted from an answer.
type ContentAnalysis struct {
	WordCount         int     `json:"wordCount"`
	SentenceCount     int     `json:"sentenceCount"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	HasExamples       bool    `json:"hasExamples"`
	HasMetrics        bool    `json:"hasMetrics"`
	HasActionVerbs    bool    `json:"hasActionVerbs"`
}
