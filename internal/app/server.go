package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"knowledgescout/internal/api/handlers"
	appMiddleware "knowledgescout/internal/api/middlewares"
	"knowledgescout/internal/config"
	"knowledgescout/internal/core/ingest"
	"knowledgescout/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users *services.UserService, docs *services.DocumentService, conversations *services.ConversationService, ingestor ingest.Ingestor) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(docs, ingestor)
	chatHandler := handlers.NewChatHandler(conversations)
	aiHandler := handlers.NewAIHandler(docs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health)

		// public endpoints
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.NewJWTMiddleware(cfg.JWTSecret))

			protected.Get("/auth/profile", authHandler.Profile)

			protected.Post("/documents/upload", docHandler.Upload)
			protected.Get("/documents", docHandler.List)
			protected.Get("/documents/{documentID}", docHandler.Get)
			protected.Delete("/documents/{documentID}", docHandler.Delete)

			protected.Post("/documents/{documentID}/summary", aiHandler.RegenerateSummary)
			protected.Post("/documents/{documentID}/questions", aiHandler.SuggestQuestions)

			protected.Post("/chat/sessions", chatHandler.CreateSession)
			protected.Get("/chat/sessions", chatHandler.ListSessions)
			protected.Get("/chat/sessions/{sessionID}", chatHandler.GetSession)
			protected.Delete("/chat/sessions/{sessionID}", chatHandler.DeleteSession)
			protected.Post("/chat/sessions/{sessionID}/messages", chatHandler.PostMessage)
			protected.Get("/chat/sessions/{sessionID}/messages", chatHandler.ListMessages)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
