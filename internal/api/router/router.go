package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calder-ai/lead-qualification-platform/internal/conversation"
	httpmiddleware "github.com/calder-ai/lead-qualification-platform/internal/http/middleware"
	"github.com/calder-ai/lead-qualification-platform/internal/leads"
	"github.com/calder-ai/lead-qualification-platform/internal/webchat"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	LeadsHandler        *leads.Handler
	WebChatHandler      *webchat.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string

	// EmailConfigured feeds the health payload so operators can see at a
	// glance whether lead routing will actually send anything.
	EmailConfigured bool

	// RateLimitPerSecond enables per-IP rate limiting when > 0.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitPerSecond) * 2
		}
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, burst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.WebChatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Get("/ws", cfg.WebChatHandler.HandleWebSocket)
				r.Post("/message", cfg.WebChatHandler.HandleMessage)
				r.Get("/history", cfg.WebChatHandler.HandleHistory)
				r.Get("/widget.js", cfg.WebChatHandler.HandleWidgetJS)
			})
		}

		if cfg.ConversationHandler != nil {
			public.Route("/conversations", func(r chi.Router) {
				r.Post("/start", cfg.ConversationHandler.Start)
				r.Post("/message", cfg.ConversationHandler.Message)
				r.Get("/{sessionID}/history", func(w http.ResponseWriter, req *http.Request) {
					cfg.ConversationHandler.History(w, req, chi.URLParam(req, "sessionID"))
				})
				r.Delete("/{sessionID}", func(w http.ResponseWriter, req *http.Request) {
					cfg.ConversationHandler.Reset(w, req, chi.URLParam(req, "sessionID"))
				})
			})
		}

		if cfg.LeadsHandler != nil {
			public.Post("/leads", cfg.LeadsHandler.Create)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.List)
			admin.Get("/leads/{leadID}", func(w http.ResponseWriter, req *http.Request) {
				cfg.LeadsHandler.Get(w, req, chi.URLParam(req, "leadID"))
			})
		})
	}

	return r
}

func healthHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":           "ok",
			"email_configured": cfg.EmailConfigured,
			"chat_enabled":     cfg.ConversationHandler != nil,
		})
	}
}
