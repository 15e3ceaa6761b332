package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server-to-client message types
const (
	MsgQuestion         MessageType = "question"
	MsgSpeak            MessageType = "speak"
	MsgListening        MessageType = "listening"
	MsgRecording        MessageType = "recording"
	MsgEvaluationResult MessageType = "evaluation_result"
	MsgFollowUp         MessageType = "follow_up"
	MsgSessionComplete  MessageType = "session_complete"
	MsgError            MessageType = "error"
)

// Client-to-server message types
const (
	MsgTranscriptUpdate MessageType = "transcript_update"
	MsgStartAnswer      MessageType = "start_answer"
	MsgStopAnswer       MessageType = "stop_answer"
	MsgSetRecording     MessageType = "set_recording"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub manages WebSocket connections keyed by session ID. A session has at
// most one connection; a reconnect replaces the previous one.
type Hub struct {
	conns map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *sessionMessage
	disconnect chan string
}

// Connection represents a WebSocket connection to one session
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

type sessionMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *sessionMessage, 256),
		disconnect: make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if previous, ok := h.conns[conn.SessionID]; ok {
				close(previous.Send)
			}
			h.conns[conn.SessionID] = conn
			h.mu.Unlock()
			log.Printf("client connected to session %s", conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.SessionID]; ok && existing == conn {
				delete(h.conns, conn.SessionID)
				close(conn.Send)
				log.Printf("client disconnected from session %s", conn.SessionID)
			}
			h.mu.Unlock()

		case id := <-h.disconnect:
			h.mu.Lock()
			if conn, ok := h.conns[id]; ok {
				delete(h.conns, id)
				close(conn.Send)
				log.Printf("session %s connection dropped by server", id)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if conn, ok := h.conns[msg.SessionID]; ok {
				data, _ := json.Marshal(msg.Message)
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SendToSession sends a message to a session's client (implements service.Broadcaster)
func (h *Hub) SendToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &sessionMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectSession drops a session's connection (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.disconnect <- sessionID
}
