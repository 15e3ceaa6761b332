package service

// Broadcaster pushes session events to the connected client (avoids an import
// cycle with the WebSocket hub).
type Broadcaster interface {
	SendToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
