package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload for a session token. A token grants access
// to exactly one session's REST and WebSocket surface.
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// StartSessionRequest is the body of POST /v1/sessions.
type StartSessionRequest struct {
	Topic string      `json:"topic"`
	Mode  SessionMode `json:"mode"`
}

// StartSessionResponse returns the new session, its access token and the first
// question.
type StartSessionResponse struct {
	SessionID      string          `json:"sessionId"`
	Token          string          `json:"token"`
	Status         SessionStatus   `json:"status"`
	FirstQuestion  *QuestionRecord `json:"firstQuestion,omitempty"`
	TotalQuestions int             `json:"totalQuestions"`
}

// HistorySummary aggregates the persisted history.
type HistorySummary struct {
	OverallScore  float64 `json:"overallScore"`
	TotalDuration int     `json:"totalDuration"`
	Count         int     `json:"count"`
}
