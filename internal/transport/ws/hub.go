package ws

import (
	"encoding/json"
	"log"
	"sync"

	"campuswell/internal/model"
)

// MessageType defines the type of WebSocket message. The event names are
// owned by model so the services emitting them and the feed share one
// vocabulary.
type MessageType string

const (
	MsgAlertRaised = MessageType(model.EventAlertRaised)
	MsgAlertFailed = MessageType(model.EventAlertFailed)
	MsgRiskChanged = MessageType(model.EventRiskChanged)
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages mentor dashboard connections. Alerts and risk changes raised
// anywhere in the service fan out to every connected mentor, or to one mentor
// when the event is scoped to their assigned students.
type Hub struct {
	conns map[string]map[*Connection]bool // mentorID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one mentor's WebSocket connection
type Connection struct {
	MentorID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ToMentor string // Empty means all mentors
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.MentorID] == nil {
				h.conns[conn.MentorID] = make(map[*Connection]bool)
			}
			h.conns[conn.MentorID][conn] = true
			h.mu.Unlock()
			log.Printf("Mentor %s connected to live feed", conn.MentorID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.MentorID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, conn.MentorID)
					}
					log.Printf("Mentor %s disconnected from live feed", conn.MentorID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	data, err := json.Marshal(msg.Message)
	if err != nil {
		log.Printf("Failed to marshal ws message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(conns map[*Connection]bool) {
		for conn := range conns {
			select {
			case conn.Send <- data:
			default:
				// Slow consumer, drop the message rather than block the hub
			}
		}
	}

	if msg.ToMentor != "" {
		if conns, ok := h.conns[msg.ToMentor]; ok {
			send(conns)
		}
		return
	}
	for _, conns := range h.conns {
		send(conns)
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToMentors sends an event to every connected mentor.
// Implements service.Broadcaster.
func (h *Hub) BroadcastToMentors(msgType string, payload interface{}) {
	h.enqueue("", msgType, payload)
}

// BroadcastToMentor sends an event to one mentor's connections.
// Implements service.Broadcaster.
func (h *Hub) BroadcastToMentor(mentorID string, msgType string, payload interface{}) {
	h.enqueue(mentorID, msgType, payload)
}

func (h *Hub) enqueue(mentorID, msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal ws payload: %v", err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		ToMentor: mentorID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: raw,
		},
	}
}
