package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mockmate/internal/config"
	"mockmate/internal/metrics"
	"mockmate/internal/model"
	"mockmate/internal/speech"
)

const learningNoSpeechAnswer = "(No speech - learning mode)"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrRecordingRequired = errors.New("please start camera recording first")
	ErrNoSpeech          = errors.New("please speak your answer")
	ErrNotAwaiting       = errors.New("no question awaiting an answer")
	ErrAnswerInProgress  = errors.New("answer already in progress")
	ErrNoAnswerRunning   = errors.New("no answer in progress")
	ErrNoQuestions       = errors.New("no questions available for topic")
)

// liveSession is the mutable server-side state behind one session ID. The
// embedded snapshot is what Get and the WebSocket events expose; the rest is
// capture and timer machinery that never leaves the service.
type liveSession struct {
	mu sync.Mutex

	state    model.Session
	listener *speech.Listener

	answerStart  time.Time
	speakTimer   *time.Timer
	advanceTimer *time.Timer
	flushed      bool
}

// SessionService drives interview sessions through their lifecycle: question
// delivery, answer capture, evaluation, follow-up injection and the final
// history flush. Sessions live in memory; only the evaluated answers and the
// learning resume positions are persisted.
type SessionService struct {
	questions *QuestionService
	evaluator *EvaluatorService
	followUps *FollowUpSelector
	history   *HistoryService
	cfg       config.InterviewConfig
	metrics   *metrics.Metrics

	broadcaster Broadcaster

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func NewSessionService(questions *QuestionService, evaluator *EvaluatorService, followUps *FollowUpSelector, history *HistoryService, cfg config.InterviewConfig, m *metrics.Metrics) *SessionService {
	return &SessionService{
		questions: questions,
		evaluator: evaluator,
		followUps: followUps,
		history:   history,
		cfg:       cfg,
		metrics:   m,
		sessions:  make(map[string]*liveSession),
	}
}

// SetBroadcaster wires the WebSocket hub after construction.
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *SessionService) send(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.SendToSession(sessionID, msgType, payload)
	}
}

// Start creates a session for a topic. In learning mode the stored resume
// position is honored when it still points inside the question set.
func (s *SessionService) Start(ctx context.Context, topic string, mode model.SessionMode) (*model.Session, error) {
	questions, err := s.questions.Load(ctx, topic)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	startIndex := 0
	if mode == model.ModeLearning {
		progress := s.history.GetLearningProgress(topic)
		if progress.LastQuestionIndex > 0 && progress.LastQuestionIndex < len(questions) {
			startIndex = progress.LastQuestionIndex
		}
	}

	// Sessions splice follow-ups into their working copy, so never share the
	// cached slice.
	working := make([]model.QuestionRecord, len(questions))
	copy(working, questions)

	ls := &liveSession{
		state: model.Session{
			ID:           uuid.New().String(),
			Topic:        topic,
			Mode:         mode,
			Status:       model.StatusAwaitingAnswer,
			CurrentIndex: startIndex,
			Questions:    working,
			Answers:      []model.AnswerRecord{},
			StartedAt:    time.Now(),
		},
	}

	s.mu.Lock()
	s.sessions[ls.state.ID] = ls
	s.mu.Unlock()

	s.metrics.IncrementSessionsStarted()
	s.metrics.IncrementQuestionsAsked()
	log.Printf("session %s started: topic=%s mode=%s questions=%d index=%d",
		ls.state.ID, topic, mode, len(working), startIndex)

	snapshot := ls.snapshot()
	return &snapshot, nil
}

// Get returns a snapshot of a session.
func (s *SessionService) Get(id string) (*model.Session, error) {
	ls, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	snapshot := ls.snapshot()
	return &snapshot, nil
}

// SetRecording toggles the client's recording flag. Interview mode refuses to
// start an answer until it is set.
func (s *SessionService) SetRecording(id string, active bool) error {
	ls, err := s.lookup(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	ls.state.RecordingActive = active
	ls.mu.Unlock()

	s.send(id, "recording", map[string]bool{"active": active})
	return nil
}

// StartAnswer begins capturing the answer to the current question. Interview
// mode first "speaks" the question: the listening phase starts after a pacing
// delay proportional to the question length. Learning mode listens
// immediately.
func (s *SessionService) StartAnswer(id string) error {
	ls, err := s.lookup(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.state.Status != model.StatusAwaitingAnswer {
		return ErrNotAwaiting
	}
	// The status stays awaiting_answer while the question is being spoken, so
	// gate on the pending pacing timer too.
	if ls.speakTimer != nil {
		return ErrAnswerInProgress
	}
	if ls.state.Mode == model.ModeInterview && !ls.state.RecordingActive {
		return ErrRecordingRequired
	}
	question := ls.state.CurrentQuestion()
	if question == nil {
		return ErrNotAwaiting
	}

	ls.listener = speech.NewListener(
		time.Duration(s.cfg.SilenceTimerMS)*time.Millisecond,
		time.Duration(s.cfg.SilenceThresholdMS)*time.Millisecond,
		func(final string) { s.finishAnswer(id, final) },
	)

	if ls.state.Mode == model.ModeInterview {
		delay := s.speakDelay(question.Question)
		s.send(id, "speak", map[string]interface{}{
			"text":     question.Question,
			"duration": delay.Milliseconds(),
		})
		ls.speakTimer = time.AfterFunc(delay, func() { s.beginListening(id) })
		return nil
	}

	s.beginListeningLocked(id, ls)
	return nil
}

// speakDelay approximates how long the client spends reading the question
// aloud.
func (s *SessionService) speakDelay(question string) time.Duration {
	words := len(strings.Fields(question))
	delay := time.Duration(words*s.cfg.SpeechMSPerWord) * time.Millisecond
	min := time.Duration(s.cfg.SpeechMinDelayMS) * time.Millisecond
	if delay < min {
		delay = min
	}
	return delay
}

func (s *SessionService) beginListening(id string) {
	ls, err := s.lookup(id)
	if err != nil {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	s.beginListeningLocked(id, ls)
}

func (s *SessionService) beginListeningLocked(id string, ls *liveSession) {
	ls.speakTimer = nil
	if ls.listener == nil || !ls.listener.Start() {
		return
	}
	ls.state.Status = model.StatusListening
	ls.answerStart = time.Now()
	s.send(id, "listening", map[string]bool{"active": true})
}

// TranscriptUpdate feeds an incremental transcript into the active listener.
// Updates outside the listening phase are dropped.
func (s *SessionService) TranscriptUpdate(id, text string) error {
	ls, err := s.lookup(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	listener := ls.listener
	ls.mu.Unlock()

	if listener != nil {
		listener.Update(text)
	}
	return nil
}

// StopAnswer ends capture manually. Interview mode rejects the stop while the
// transcript is still empty; learning mode substitutes a placeholder answer.
func (s *SessionService) StopAnswer(id string) error {
	ls, err := s.lookup(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	listener := ls.listener
	mode := ls.state.Mode
	ls.mu.Unlock()

	if listener == nil || !listener.Running() {
		return ErrNoAnswerRunning
	}

	if mode == model.ModeInterview && strings.TrimSpace(listener.Transcript()) == "" {
		return ErrNoSpeech
	}

	final, ok := listener.Stop()
	if !ok {
		// The silence path won the race and is already evaluating.
		return nil
	}

	s.finishAnswer(id, final)
	return nil
}

// finishAnswer evaluates the captured transcript, injects a follow-up when the
// selector asks for one and schedules the advance to the next question.
func (s *SessionService) finishAnswer(id, transcript string) {
	ls, err := s.lookup(id)
	if err != nil {
		return
	}

	ls.mu.Lock()

	question := ls.state.CurrentQuestion()
	if question == nil || ls.state.Status == model.StatusComplete {
		ls.mu.Unlock()
		return
	}
	ls.state.Status = model.StatusEvaluating
	s.send(id, "listening", map[string]bool{"active": false})

	duration := int(time.Since(ls.answerStart).Seconds())
	if duration < 1 {
		duration = 1
	}

	answer := transcript
	var eval model.Evaluation
	if ls.state.Mode == model.ModeLearning && strings.TrimSpace(transcript) == "" {
		answer = learningNoSpeechAnswer
		eval = model.Evaluation{Feedback: emptyAnswerFeedback}
	} else {
		eval = s.evaluator.Evaluate(answer, question.Question, duration)
	}

	record := model.AnswerRecord{
		Question:         question.Question,
		Answer:           answer,
		Feedback:         eval.Feedback,
		Timestamp:        time.Now(),
		Duration:         duration,
		PerformanceScore: eval.PerformanceScore,
		ConfidenceLevel:  eval.ConfidenceLevel,
		EmotionalTone:    s.evaluator.AnalyzeTone(transcript),
		WordCount:        len(strings.Fields(answer)),
		Language:         ls.state.Topic,
	}
	ls.state.Answers = append(ls.state.Answers, record)
	s.metrics.IncrementAnswersEvaluated()
	s.send(id, "evaluation_result", record)

	if !question.IsFollowUp && s.followUps.ShouldAsk(answer) {
		if text := s.followUps.Pick(answer, question.FollowUps); text != "" {
			followUp := model.QuestionRecord{
				ID:         question.ID*100 + 1,
				Question:   text,
				Category:   "Follow-up",
				IsFollowUp: true,
			}
			next := ls.state.CurrentIndex + 1
			ls.state.Questions = append(ls.state.Questions[:next],
				append([]model.QuestionRecord{followUp}, ls.state.Questions[next:]...)...)
			s.metrics.IncrementFollowUpsInjected()
			s.send(id, "follow_up", followUp)
		}
	}

	if ls.state.Mode == model.ModeLearning {
		topic := ls.state.Topic
		nextIndex := ls.state.CurrentIndex + 1
		go func() {
			if err := s.history.UpdateLearningProgress(context.Background(), topic, nextIndex); err != nil {
				log.Printf("session %s: saving learning progress: %v", id, err)
			}
		}()
	}

	ls.advanceTimer = time.AfterFunc(time.Duration(s.cfg.AdvanceDelayMS)*time.Millisecond, func() {
		s.advance(id)
	})
	ls.mu.Unlock()
}

// advance moves to the next question or completes the session.
func (s *SessionService) advance(id string) {
	ls, err := s.lookup(id)
	if err != nil {
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.state.Status == model.StatusComplete {
		return
	}

	ls.state.CurrentIndex++
	if ls.state.CurrentIndex >= len(ls.state.Questions) {
		s.completeLocked(id, ls)
		return
	}

	ls.state.Status = model.StatusAwaitingAnswer
	s.metrics.IncrementQuestionsAsked()
	s.send(id, "question", map[string]interface{}{
		"question": ls.state.Questions[ls.state.CurrentIndex],
		"index":    ls.state.CurrentIndex,
		"total":    len(ls.state.Questions),
	})
}

// completeLocked finishes the session: one-time history flush, learning
// progress reset and the completion event. Caller holds ls.mu.
func (s *SessionService) completeLocked(id string, ls *liveSession) {
	now := time.Now()
	ls.state.Status = model.StatusComplete
	ls.state.CompletedAt = &now
	s.metrics.IncrementSessionsCompleted()

	s.flushLocked(id, ls)

	if ls.state.Mode == model.ModeLearning {
		topic := ls.state.Topic
		go func() {
			if err := s.history.ResetLearningProgress(context.Background(), topic); err != nil {
				log.Printf("session %s: resetting learning progress: %v", id, err)
			}
		}()
	}

	s.send(id, "session_complete", map[string]interface{}{
		"answers": ls.state.Answers,
		"summary": s.history.Summary(),
	})
	log.Printf("session %s complete: %d answers", id, len(ls.state.Answers))
}

// flushLocked persists the session's answers exactly once, synchronously:
// completion reports a summary that includes this session, and Close must not
// return before buffered answers reach the store. Caller holds ls.mu.
func (s *SessionService) flushLocked(id string, ls *liveSession) {
	if ls.flushed || len(ls.state.Answers) == 0 {
		return
	}
	ls.flushed = true

	if err := s.history.BatchAdd(context.Background(), ls.state.Answers); err != nil {
		log.Printf("session %s: flushing history: %v", id, err)
	}
}

// Reset rewinds a session to its first question, discarding unsaved answers.
// With clearHistory the persisted history is wiped too.
func (s *SessionService) Reset(ctx context.Context, id string, clearHistory bool) (*model.Session, error) {
	ls, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	ls.cancelTimersLocked()

	// Drop spliced follow-ups so the run restarts from the original set.
	questions := ls.state.Questions[:0]
	for _, q := range ls.state.Questions {
		if !q.IsFollowUp {
			questions = append(questions, q)
		}
	}
	ls.state.Questions = questions
	ls.state.CurrentIndex = 0
	ls.state.Answers = []model.AnswerRecord{}
	ls.state.Status = model.StatusAwaitingAnswer
	ls.state.CompletedAt = nil
	ls.flushed = false
	topic := ls.state.Topic
	mode := ls.state.Mode
	snapshot := ls.snapshotLocked()
	ls.mu.Unlock()

	if clearHistory {
		if err := s.history.Clear(ctx); err != nil {
			return nil, err
		}
	}
	if mode == model.ModeLearning {
		if err := s.history.ResetLearningProgress(ctx, topic); err != nil {
			return nil, err
		}
	}

	s.send(id, "question", map[string]interface{}{
		"question": snapshot.Questions[0],
		"index":    0,
		"total":    len(snapshot.Questions),
	})
	return &snapshot, nil
}

// Close tears a session down, flushing any unsaved answers first.
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	ls, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	ls.cancelTimersLocked()
	s.flushLocked(id, ls)
	ls.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(id)
	}
	log.Printf("session %s closed", id)
	return nil
}

// CloseAll tears down every live session. Used at shutdown so buffered
// answers reach the store.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.Close(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Printf("closing session %s: %v", id, err)
		}
	}
}

func (s *SessionService) lookup(id string) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

func (ls *liveSession) snapshot() model.Session {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.snapshotLocked()
}

func (ls *liveSession) snapshotLocked() model.Session {
	snap := ls.state
	snap.Questions = append([]model.QuestionRecord(nil), ls.state.Questions...)
	snap.Answers = append([]model.AnswerRecord(nil), ls.state.Answers...)
	return snap
}

// cancelTimersLocked stops the pacing and advance timers and closes the
// active listener. Caller holds ls.mu.
func (ls *liveSession) cancelTimersLocked() {
	if ls.speakTimer != nil {
		ls.speakTimer.Stop()
		ls.speakTimer = nil
	}
	if ls.advanceTimer != nil {
		ls.advanceTimer.Stop()
		ls.advanceTimer = nil
	}
	if ls.listener != nil {
		ls.listener.Close()
		ls.listener = nil
	}
}
