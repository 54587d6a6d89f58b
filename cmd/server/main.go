package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/alumniconnect/backend/internal/config"
	"github.com/alumniconnect/backend/internal/database"
	"github.com/alumniconnect/backend/internal/email"
	"github.com/alumniconnect/backend/internal/identity"
	postgresrepo "github.com/alumniconnect/backend/internal/repository/postgres"
	"github.com/alumniconnect/backend/internal/service"
	"github.com/alumniconnect/backend/internal/transport/http/handlers"
	"github.com/alumniconnect/backend/internal/transport/http/middleware"
	"github.com/alumniconnect/backend/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	connRepo := postgresrepo.NewConnectionRepo(pool)
	msgRepo := postgresrepo.NewMessageRepo(pool)

	// Identity + offline channel
	resolver := identity.NewResolver(cfg.JWTSecret, cfg.TokenTTL)
	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)

	// Services
	authService := service.NewAuthService(userRepo, resolver)
	notifService := service.NewNotificationService(userRepo, mailer)
	connService := service.NewConnectionService(connRepo, userRepo, notifService)
	msgService := service.NewMessageService(msgRepo, userRepo)
	convService := service.NewConversationService(msgRepo, userRepo)

	// Live sessions
	hub := ws.NewHub()
	go hub.Run()
	msgService.SetPusher(ws.NewHubPusher(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	connHandler := handlers.NewConnectionHandler(connService)
	msgHandler := handlers.NewMessageHandler(msgService, convService)

	// Auth middleware
	auth := middleware.Auth(resolver)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Connections
	mux.Handle("POST /api/v1/connections/request", auth(http.HandlerFunc(connHandler.Request)))
	mux.Handle("PATCH /api/v1/connections/request/{id}", auth(http.HandlerFunc(connHandler.Respond)))
	mux.Handle("GET /api/v1/connections/requests/pending", auth(http.HandlerFunc(connHandler.ListPending)))
	mux.Handle("GET /api/v1/connections/requests/sent", auth(http.HandlerFunc(connHandler.ListSent)))
	mux.Handle("GET /api/v1/connections/accepted", auth(http.HandlerFunc(connHandler.ListAccepted)))
	mux.Handle("GET /api/v1/connections/status/{otherUserId}", auth(http.HandlerFunc(connHandler.GetStatus)))

	// Protected - Messages (pull side; sends go over the websocket)
	mux.Handle("GET /api/v1/messages/history/{partnerId}", auth(http.HandlerFunc(msgHandler.History)))
	mux.Handle("PATCH /api/v1/messages/read/{partnerId}", auth(http.HandlerFunc(msgHandler.MarkRead)))
	mux.Handle("GET /api/v1/messages/conversations", auth(http.HandlerFunc(msgHandler.ListConversations)))

	// Live sessions
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, resolver, msgService, cfg.WSAllowAnonymous))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
