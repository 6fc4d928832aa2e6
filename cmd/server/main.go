package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"konekt/infrastructure/cache"
	"konekt/infrastructure/db"
	"konekt/infrastructure/ws"
	"konekt/internal/config"
	httpHandler "konekt/internal/delivery/http"
	"konekt/internal/delivery/websocket"
	"konekt/internal/entity"
	"konekt/internal/repository"
	"konekt/internal/usecase"
	"konekt/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	mongoDb, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal(err)
	}
	defer mongoDb.Close(ctx)

	log.Println("Connected to MongoDB")

	if err := mongoDb.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(*mongoDb.DB)
	messageRepo := repository.NewMessageRepository(*mongoDb.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(*mongoDb.DB)

	// Access token: 15 minutes, Refresh token: 30 days
	jwtManager := jwt.NewJWTManager(cfg.JWTSecret, 15*time.Minute, 30*24*time.Hour)

	identityCache := cache.NewMemCache[entity.UserPublic](10 * time.Minute)
	defer identityCache.Close()

	// Push channel: Redis-backed when REDIS_ADDR is set, in-memory otherwise
	var hub ws.IHub
	if cfg.RedisAddr != "" {
		log.Printf("Using Redis hub at %s with server ID: %s", cfg.RedisAddr, cfg.ServerID)
		hub = ws.NewRedisHub(cfg.RedisAddr, cfg.ServerID)
	} else {
		log.Println("Using in-memory hub (single server)")
		hub = ws.NewHub()
	}

	// Initialize use cases
	authUc := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, jwtManager)
	userUc := usecase.NewUserUsecase(userRepo, identityCache)
	messageUc := usecase.NewMessageUsecase(messageRepo, userUc, hub)

	// Sweep expired refresh tokens at startup and twice a day after.
	if err := authUc.PurgeExpiredTokens(ctx); err != nil {
		log.Printf("Purge expired refresh tokens: %v", err)
	}
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := authUc.PurgeExpiredTokens(ctx); err != nil {
				log.Printf("Purge expired refresh tokens: %v", err)
			}
		}
	}()

	hub.SetOnUserOffline(func(userID string) error {
		return userUc.HandleUserOffline(ctx, userID)
	})

	go hub.Run()

	log.Println("Push channel is running")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	// Initialize handlers
	websocketH := websocket.NewWebsocketHandler(hub, userUc)
	messageH := httpHandler.NewMessageHandler(messageUc)
	authH := httpHandler.NewAuthHandler(authUc)
	authMiddleware := httpHandler.NewAuthMiddleware(authUc)

	// Map routes
	httpHandler.MapHttpRoutes(router, messageH, authH, websocketH, authMiddleware)

	log.Printf("HTTP server is running on :%s", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
