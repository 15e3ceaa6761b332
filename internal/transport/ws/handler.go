package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"mockmate/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, sessionSvc *service.SessionService) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
	}
}

// SessionWS handles GET /v1/ws/sessions/{id}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateSessionToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.SessionID != id {
		http.Error(w, "token not valid for this session", http.StatusForbidden)
		return
	}

	session, err := h.sessionSvc.Get(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID: id,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)

	// Replay the current question so a (re)connecting client can render
	// without an extra round trip.
	if q := session.CurrentQuestion(); q != nil {
		h.hub.SendToSession(id, string(MsgQuestion), map[string]interface{}{
			"question": q,
			"index":    session.CurrentIndex,
			"total":    len(session.Questions),
		})
	}
}

// transcriptPayload is the body of a transcript_update event
type transcriptPayload struct {
	Text string `json:"text"`
}

// recordingPayload is the body of a set_recording event
type recordingPayload struct {
	Active bool `json:"active"`
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn.SessionID, "malformed message")
			continue
		}
		h.dispatch(conn.SessionID, &msg)
	}
}

// dispatch routes one client event into the session service. Transient
// rejections (e.g. stopping before any speech arrived) go back to the client
// as error events; the connection stays up.
func (h *Handler) dispatch(sessionID string, msg *Message) {
	var err error
	switch msg.Type {
	case MsgTranscriptUpdate:
		var p transcriptPayload
		if jsonErr := json.Unmarshal(msg.Payload, &p); jsonErr != nil {
			h.sendError(sessionID, "malformed transcript_update payload")
			return
		}
		err = h.sessionSvc.TranscriptUpdate(sessionID, p.Text)

	case MsgStartAnswer:
		err = h.sessionSvc.StartAnswer(sessionID)

	case MsgStopAnswer:
		err = h.sessionSvc.StopAnswer(sessionID)

	case MsgSetRecording:
		var p recordingPayload
		if jsonErr := json.Unmarshal(msg.Payload, &p); jsonErr != nil {
			h.sendError(sessionID, "malformed set_recording payload")
			return
		}
		err = h.sessionSvc.SetRecording(sessionID, p.Active)

	default:
		h.sendError(sessionID, "unknown message type: "+string(msg.Type))
		return
	}

	if err != nil {
		h.sendError(sessionID, err.Error())
	}
}

func (h *Handler) sendError(sessionID, message string) {
	h.hub.SendToSession(sessionID, string(MsgError), map[string]string{"message": message})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
