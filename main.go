package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"online-chat/internal/auth"
	"online-chat/internal/chat"
	"online-chat/internal/config"
	"online-chat/internal/database"
	"online-chat/internal/presence"
	"online-chat/internal/room"
	"online-chat/internal/user"
	"online-chat/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	metrics := config.NewServerMetrics()

	// User store: MongoDB เมื่อกำหนด URI, ไม่งั้นใช้ in-memory
	var userRepo user.Repository
	var mongodb *database.MongoDB
	if cfg.MongoURI != "" {
		mongodb, err = database.NewMongoDB(&database.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			ConnectTimeout: 10 * time.Second,
			PingTimeout:    5 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    5,
		})
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongodb.Close()

		userRepo, err = database.NewMongoUserRepository(mongodb)
		if err != nil {
			log.Fatalf("❌ Failed to initialize user repository: %v", err)
		}
	} else {
		log.Printf("⚠️ MONGO_URI not set, registered users are kept in memory only")
		userRepo = user.NewInMemoryRepository()
	}

	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := auth.NewService(userRepo, auth.NewPasswordHasher(), sessions)

	registry := presence.NewRegistry()
	hub := websocket.NewHub(cfg, metrics)
	router := room.NewRouter(hub, registry, metrics)
	handler := chat.NewHandler(hub, router, registry, authService, userRepo, cfg, metrics)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🚀 Starting chat server on %s", cfg.Port)
		log.Printf("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
	log.Println("👋 Server stopped gracefully")
}
