package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisHub is the multi-server push channel. Local connections are served
// from memory; every publish is also relayed over Redis pub/sub so servers
// holding other connections of the same user deliver it too.
type RedisHub struct {
	clients map[string]map[*UserClient]struct{}
	mu      sync.RWMutex

	redisClient *redis.Client
	pubsub      *redis.PubSub
	serverID    string

	Register   chan *UserClient
	Unregister chan *UserClient

	OnUserOffline func(userID string) error
}

type relayedEvent struct {
	FromServerID string `json:"fromServerId"`
	ToUserID     string `json:"toUserId"`
	Payload      []byte `json:"payload"`
}

func NewRedisHub(redisAddr string, serverID string) IHub {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	hub := &RedisHub{
		clients:     make(map[string]map[*UserClient]struct{}),
		redisClient: rdb,
		serverID:    serverID,
		Register:    make(chan *UserClient),
		Unregister:  make(chan *UserClient),
	}

	hub.pubsub = rdb.PSubscribe(context.Background(), "messages:*")

	return hub
}

func (h *RedisHub) Run() {
	go h.subscribeRedis()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserId] == nil {
				h.clients[client.UserId] = make(map[*UserClient]struct{})
			}
			h.clients[client.UserId][client] = struct{}{}
			h.mu.Unlock()

			// Presence key for this user, refreshed per connection.
			h.redisClient.Set(
				context.Background(),
				"user:"+client.UserId+":server",
				h.serverID,
				0,
			)

			log.Printf("[%s] %s connected", h.serverID, client.UserId)

		case client := <-h.Unregister:
			h.unregister(client)
		}
	}
}

func (h *RedisHub) unregister(client *UserClient) {
	h.mu.Lock()
	conns, ok := h.clients[client.UserId]
	if ok {
		if _, subscribed := conns[client]; subscribed {
			delete(conns, client)
			close(client.send)
		}
		if len(conns) == 0 {
			delete(h.clients, client.UserId)

			h.redisClient.Del(
				context.Background(),
				"user:"+client.UserId+":server",
			)

			log.Printf("[%s] %s disconnected", h.serverID, client.UserId)
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

func (h *RedisHub) subscribeRedis() {
	ch := h.pubsub.Channel()

	log.Printf("[%s] Redis subscriber started", h.serverID)

	for msg := range ch {
		var event relayedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Error unmarshaling relayed event: %v", err)
			continue
		}

		// Local delivery already happened on the publishing server.
		if event.FromServerID == h.serverID {
			continue
		}

		h.deliverLocal(event.ToUserID, event.Payload)
	}
}

func (h *RedisHub) Publish(userID string, payload []byte) {
	h.deliverLocal(userID, payload)
	h.relay(userID, payload)
}

func (h *RedisHub) deliverLocal(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			log.Printf("[%s] Failed to send to local client %s", h.serverID, userID)
		}
	}
}

func (h *RedisHub) relay(userID string, payload []byte) {
	ctx := context.Background()

	event := relayedEvent{
		FromServerID: h.serverID,
		ToUserID:     userID,
		Payload:      payload,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling relayed event: %v", err)
		return
	}

	if err := h.redisClient.Publish(ctx, "messages:"+userID, eventBytes).Err(); err != nil {
		log.Printf("Error publishing to Redis: %v", err)
	}
}

func (h *RedisHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}

func (h *RedisHub) RegisterClient(client *UserClient) {
	h.Register <- client
}

func (h *RedisHub) UnregisterClient(client *UserClient) {
	h.Unregister <- client
}

func (h *RedisHub) SetOnUserOffline(callback func(userID string) error) {
	h.OnUserOffline = callback
}
