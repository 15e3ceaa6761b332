package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SessionsStarted   int64     `json:"sessionsStarted"`
	SessionsCompleted int64     `json:"sessionsCompleted"`
	QuestionsAsked    int64     `json:"questionsAsked"`
	FollowUpsInjected int64     `json:"followUpsInjected"`
	AnswersEvaluated  int64     `json:"answersEvaluated"`
	LastUpdateTime    time.Time `json:"lastUpdateTime"`
}

// Metrics counts interview activity since process start.
type Metrics struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewMetrics() *Metrics {
	return &Metrics{
		snap: Snapshot{LastUpdateTime: time.Now()},
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.SessionsStarted++
	m.snap.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.SessionsCompleted++
	m.snap.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.QuestionsAsked++
	m.snap.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementFollowUpsInjected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.FollowUpsInjected++
	m.snap.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersEvaluated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.AnswersEvaluated++
	m.snap.LastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
