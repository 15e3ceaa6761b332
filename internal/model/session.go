package model

import "time"

type SessionStatus string

const (
	StatusIdle           SessionStatus = "idle"
	StatusAwaitingAnswer SessionStatus = "awaiting_answer"
	StatusListening      SessionStatus = "listening"
	StatusEvaluating     SessionStatus = "evaluating"
	StatusComplete       SessionStatus = "complete"
)

type SessionMode string

const (
	ModeInterview SessionMode = "interview"
	ModeLearning  SessionMode = "learning"
)

// Session is a point-in-time snapshot of one interview run. The live state is
// owned by the session service; this struct is what transports see.
type Session struct {
	ID              string           `json:"id"`
	Topic           string           `json:"topic"`
	Mode            SessionMode      `json:"mode"`
	Status          SessionStatus    `json:"status"`
	CurrentIndex    int              `json:"currentIndex"`
	Questions       []QuestionRecord `json:"questions"`
	Answers         []AnswerRecord   `json:"answers"`
	RecordingActive bool             `json:"recordingActive"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}

// CurrentQuestion returns the question at CurrentIndex, or nil when the list is
// exhausted.
func (s *Session) CurrentQuestion() *QuestionRecord {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.CurrentIndex]
	return &q
}

// LearningProgress tracks the resume position for one topic in learning mode.
type LearningProgress struct {
	LastQuestionIndex int        `json:"lastQuestionIndex" bson:"lastQuestionIndex"`
	LastUpdated       *time.Time `json:"lastUpdated" bson:"lastUpdated"`
}
