package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MsgChatFragment carries one streamed reply fragment, in emission order
	MsgChatFragment MessageType = "chat_fragment"
	// MsgChatDone marks the end of a reply stream for a question
	MsgChatDone MessageType = "chat_done"
	// MsgStageChanged announces a stage transition
	MsgStageChanged MessageType = "stage_changed"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// FragmentPayload is the body of chat_fragment and chat_done messages
type FragmentPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Text          string `json:"text,omitempty"`
}

// StagePayload is the body of stage_changed messages
type StagePayload struct {
	Stage model.Stage `json:"stage"`
}

// Hub manages one WebSocket connection per session and forwards reply
// fragments and stage events to it. A session with no socket attached loses
// nothing: the HTTP response still carries the full reply.
type Hub struct {
	conns map[string]*Connection // sessionID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *outbound

	logger zerolog.Logger
}

// Connection represents one participant's WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

type outbound struct {
	sessionID string
	message   *Message
}

// NewHub creates a new WebSocket hub and starts its event loop
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *outbound, 256),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if existing, ok := h.conns[conn.SessionID]; ok {
				close(existing.Send)
			}
			h.conns[conn.SessionID] = conn
			h.mu.Unlock()
			h.logger.Debug().Str("session", conn.SessionID).Msg("websocket connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.SessionID]; ok && existing == conn {
				delete(h.conns, conn.SessionID)
				close(conn.Send)
				h.logger.Debug().Str("session", conn.SessionID).Msg("websocket disconnected")
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if conn, ok := h.conns[msg.sessionID]; ok {
				data, _ := json.Marshal(msg.message)
				select {
				case conn.Send <- data:
				default:
					// Drop if the client cannot keep up
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

// Fragment forwards one reply fragment (implements service.FragmentSink)
func (h *Hub) Fragment(sessionID string, questionIndex int, text string) {
	h.send(sessionID, MsgChatFragment, &FragmentPayload{QuestionIndex: questionIndex, Text: text})
}

// Done marks the end of a reply stream (implements service.FragmentSink)
func (h *Hub) Done(sessionID string, questionIndex int) {
	h.send(sessionID, MsgChatDone, &FragmentPayload{QuestionIndex: questionIndex})
}

// StageChanged announces a stage transition (implements service.FragmentSink)
func (h *Hub) StageChanged(sessionID string, stage model.Stage) {
	h.send(sessionID, MsgStageChanged, &StagePayload{Stage: stage})
}

func (h *Hub) send(sessionID string, msgType MessageType, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &outbound{
		sessionID: sessionID,
		message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}
