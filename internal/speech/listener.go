// Package speech adapts a stream of transcript updates into discrete answers.
// A Listener accumulates incremental transcript text and decides when the
// speaker has finished, either by silence timeout or manual stop.
package speech

import (
	"sync"
	"time"
)

// Listener is the capture state for one answer. Transcript updates restart
// the silence timer; when no update arrives within the threshold the listener
// ends the answer exactly once via the onEnd callback. Manual stops bypass
// the callback and return the final transcript directly.
type Listener struct {
	timerDelay time.Duration
	threshold  time.Duration
	onEnd      func(final string)

	mu         sync.Mutex
	running    bool
	ended      bool
	transcript string
	lastUpdate time.Time
	timer      *time.Timer
}

// NewListener creates a listener. onEnd fires on the silence path only.
func NewListener(timerDelay, threshold time.Duration, onEnd func(final string)) *Listener {
	return &Listener{
		timerDelay: timerDelay,
		threshold:  threshold,
		onEnd:      onEnd,
	}
}

// Start begins capturing. Starting an already-running listener is a no-op and
// returns false.
func (l *Listener) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return false
	}
	l.running = true
	l.ended = false
	l.transcript = ""
	l.lastUpdate = time.Now()
	return true
}

// Update records an incremental transcript. Non-empty updates replace the
// stored text and restart the silence timer; empty updates are ignored so a
// stray blank event cannot erase a captured answer.
func (l *Listener) Update(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running || l.ended || text == "" {
		return
	}

	l.transcript = text
	l.lastUpdate = time.Now()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.timerDelay, l.silenceCheck)
}

// silenceCheck runs when the timer fires: if the last update is older than
// the threshold, the answer ends. A newer update has already armed a fresh
// timer, so a stale firing simply returns.
func (l *Listener) silenceCheck() {
	l.mu.Lock()
	if !l.running || l.ended || time.Since(l.lastUpdate) <= l.threshold {
		l.mu.Unlock()
		return
	}
	l.ended = true
	l.running = false
	final := l.transcript
	l.stopTimerLocked()
	l.mu.Unlock()

	if l.onEnd != nil {
		l.onEnd(final)
	}
}

// Stop ends capture manually and returns the final transcript. Returns false
// when the listener was not running (or already ended by silence).
func (l *Listener) Stop() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running || l.ended {
		return "", false
	}
	l.ended = true
	l.running = false
	l.stopTimerLocked()
	return l.transcript, true
}

// Transcript returns the text captured so far.
func (l *Listener) Transcript() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transcript
}

// Running reports whether the listener is capturing.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Close cancels any pending timer and stops capture without firing the end
// callback. Safe to call multiple times and on never-started listeners.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	l.ended = true
	l.stopTimerLocked()
}

func (l *Listener) stopTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
