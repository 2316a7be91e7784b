package ws

import (
	"context"
	"encoding/json"
	"log"
)

// Event is the wire envelope for everything pushed to clients: session
// invalidations, announcement notifications, maintenance countdowns.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type directMessage struct {
	identityID string
	data       []byte
}

type clientMessage struct {
	client *Client
	data   []byte
}

// Hub routes events to connected clients, either broadcast or targeted at
// one identity's connections.
type Hub struct {
	clients    map[*Client]bool
	byIdentity map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
	toClient   chan clientMessage
}

// NewHub creates an idle hub; call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byIdentity: make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		direct:     make(chan directMessage, 16),
		toClient:   make(chan clientMessage, 16),
	}
}

// Run owns all hub state on a single goroutine until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			if h.byIdentity[client.identityID] == nil {
				h.byIdentity[client.identityID] = make(map[*Client]bool)
			}
			h.byIdentity[client.identityID][client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.push(client, message)
			}
		case msg := <-h.direct:
			for client := range h.byIdentity[msg.identityID] {
				h.push(client, msg.data)
			}
		case msg := <-h.toClient:
			if h.clients[msg.client] {
				h.push(msg.client, msg.data)
			}
		}
	}
}

func (h *Hub) push(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	if conns := h.byIdentity[client.identityID]; conns != nil {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byIdentity, client.identityID)
		}
	}
	close(client.send)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client; safe to call after the read pump exits.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast pushes an event to every connected client.
func (h *Hub) Broadcast(eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("ws: marshal broadcast payload: %v", err)
		return
	}
	h.broadcast <- data
}

// SendTo pushes an event to every connection of one identity.
func (h *Hub) SendTo(identityID, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("ws: marshal direct payload: %v", err)
		return
	}
	h.direct <- directMessage{identityID: identityID, data: data}
}

// SendToClient pushes an event to exactly one connection. Session
// displacement uses this: other connections of the same identity may
// hold the current session and must not see the event.
func (h *Hub) SendToClient(client *Client, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("ws: marshal client payload: %v", err)
		return
	}
	h.toClient <- clientMessage{client: client, data: data}
}
