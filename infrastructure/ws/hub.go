package ws

import (
	"log"
	"sync"
)

// Hub is the single-server push channel. A user may hold several
// connections at once (multiple tabs); every one of them receives
// each published event.
type Hub struct {
	clients       map[string]map[*UserClient]struct{}
	Register      chan *UserClient
	Unregister    chan *UserClient
	mu            sync.RWMutex
	OnUserOffline func(userID string) error
}

func NewHub() IHub {
	return &Hub{
		clients:    make(map[string]map[*UserClient]struct{}),
		Register:   make(chan *UserClient),
		Unregister: make(chan *UserClient),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserId] == nil {
				h.clients[client.UserId] = make(map[*UserClient]struct{})
			}
			h.clients[client.UserId][client] = struct{}{}
			h.mu.Unlock()
			log.Printf("%s is connected", client.UserId)

		case client := <-h.Unregister:
			h.unregister(client)
		}
	}
}

func (h *Hub) unregister(client *UserClient) {
	h.mu.Lock()
	conns, ok := h.clients[client.UserId]
	if ok {
		if _, subscribed := conns[client]; subscribed {
			delete(conns, client)
			close(client.send)
		}
		if len(conns) == 0 {
			delete(h.clients, client.UserId)
			log.Printf("%s is disconnected", client.UserId)
		}
	}
	lastGone := ok && len(conns) == 0
	h.mu.Unlock()

	if lastGone && h.OnUserOffline != nil {
		if err := h.OnUserOffline(client.UserId); err != nil {
			log.Printf("OnUserOffline error: %v", err)
		}
	}
}

func (h *Hub) Publish(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; the event is dropped for this connection.
			log.Printf("Failed to send to client: %s", userID)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}

func (h *Hub) RegisterClient(client *UserClient) {
	h.Register <- client
}

func (h *Hub) UnregisterClient(client *UserClient) {
	h.Unregister <- client
}

func (h *Hub) SetOnUserOffline(callback func(userID string) error) {
	h.OnUserOffline = callback
}
