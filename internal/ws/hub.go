package ws

import "sync"

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages status-event subscriptions keyed by agent ID.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

type message struct {
	agentID string
	payload []byte
}

type subscription struct {
	agentID string
	client  Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.agentID]; !ok {
				h.clients[sub.agentID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.agentID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.agentID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.agentID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.agentID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.agentID)
				}
			}
		}
	}
}

// Register adds a client to an agent's event stream.
func (h *Hub) Register(agentID string, client Subscriber) {
	h.register <- subscription{agentID: agentID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(agentID string, client Subscriber) {
	h.unreg <- subscription{agentID: agentID, client: client}
}

// Broadcast sends payload to all clients watching the agent.
func (h *Hub) Broadcast(agentID string, payload []byte) {
	h.broadcast <- message{agentID: agentID, payload: payload}
}
