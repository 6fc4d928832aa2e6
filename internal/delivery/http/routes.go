package http

import (
	"net/http"

	wsDelivery "konekt/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(r *chi.Mux, messageHandler *MessageHandler, authHandler *AuthHandler, websocketHandler *wsDelivery.WebsocketHandler, authMiddleware *AuthMiddleware) {
	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", http.HandlerFunc(authHandler.Register))
		r.Post("/login", http.HandlerFunc(authHandler.Login))
		r.Post("/refresh", http.HandlerFunc(authHandler.RefreshToken))
		r.Post("/logout", http.HandlerFunc(authHandler.Logout))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/auth/logout-all", http.HandlerFunc(authHandler.LogoutAll))

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", http.HandlerFunc(messageHandler.ListConversations))
			r.Get("/unread", http.HandlerFunc(messageHandler.UnreadCount))
			r.Post("/{recipientId}", http.HandlerFunc(messageHandler.Send))
			r.Patch("/read/{peerId}", http.HandlerFunc(messageHandler.MarkConversationRead))
		})

		r.Handle("/ws", http.HandlerFunc(websocketHandler.HandleWebSocket))
	})
}
