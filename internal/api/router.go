package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rrawat/converse/internal/api/handler"
	customMiddleware "github.com/rrawat/converse/internal/api/middleware"
	"github.com/rrawat/converse/internal/backend"
	"github.com/rrawat/converse/internal/chat"
	"github.com/rrawat/converse/internal/config"
	"github.com/rrawat/converse/internal/repository/redis"
)

// NewRouter creates and configures the HTTP router together with the
// conversation core it serves. redisClient may be nil, in which case
// answers are not cached.
func NewRouter(cfg *config.Config, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Answer cache (optional)
	var answerCache *redis.AnswerCache
	if redisClient != nil {
		answerCache = redis.NewAnswerCache(redisClient, cfg.Redis.AnswerTTL)
		log.Info().Dur("ttl", cfg.Redis.AnswerTTL).Msg("Answer cache enabled")
	}

	// Conversation core
	client := backend.NewClient(cfg.Backend)
	store := chat.NewStore()
	scheduler := chat.NewScheduler(cfg.Reveal.Interval)
	controller := chat.NewController(store, client, scheduler, answerCache)

	// Initialize handlers
	chatHandler := handler.NewChatHandler(controller)
	conversationHandler := handler.NewConversationHandler(controller)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(client))

		// Cache management
		r.Post("/cache/flush", handler.FlushCache(answerCache))

		// Chat
		r.Post("/ask", chatHandler.Ask)
		r.Get("/state", chatHandler.State)

		// Conversation routes
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Post("/", conversationHandler.Create)
			r.Delete("/", conversationHandler.Clear)

			r.Route("/{conversationID}", func(r chi.Router) {
				r.Delete("/", conversationHandler.Delete)
				r.Post("/activate", conversationHandler.Activate)
				r.Get("/messages", conversationHandler.Messages)
			})
		})
	})

	return r
}
