package websocket

import (
	"log"
	"net/http"

	"konekt/infrastructure/ws"
	"konekt/internal/entity"
	"konekt/internal/usecase"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler subscribes an authenticated connection to the user's
// push channel. The channel is server-to-client only; clients interact
// with messages through the REST endpoints.
type WebsocketHandler struct {
	hub    ws.IHub
	userUc usecase.UserUsecase
}

func NewWebsocketHandler(hub ws.IHub, userUc usecase.UserUsecase) *WebsocketHandler {
	return &WebsocketHandler{
		hub:    hub,
		userUc: userUc,
	}
}

func (h *WebsocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := entity.ClaimsFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}

	if err := h.userUc.HandleUserOnline(ctx, claims.UserId); err != nil {
		log.Printf("Set online error: %v", err)
	}

	client := ws.NewClient(claims.UserId, h.hub, conn)
	h.hub.RegisterClient(client)

	go client.WritePump()
	client.ReadPump()
}
