package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/jkazadi/portfolio-ai-platform/internal/http/middleware"
	"github.com/jkazadi/portfolio-ai-platform/internal/leads"
	"github.com/jkazadi/portfolio-ai-platform/internal/qualify"
	"github.com/jkazadi/portfolio-ai-platform/internal/webchat"
	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	SessionsHandler *qualify.Handler
	LeadsHandler    *leads.Handler
	WebchatHandler  *webchat.Handler
	MetricsHandler  http.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Requests per second allowed per IP on the public chat endpoints.
	// Zero disables rate limiting.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics, chat)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.SessionsHandler != nil {
			public.Route("/sessions", func(r chi.Router) {
				if cfg.ChatRateLimit > 0 {
					r.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
				}
				r.Post("/start", cfg.SessionsHandler.Start)
				r.Post("/message", cfg.SessionsHandler.Message)
				r.Get("/jobs/{jobID}", cfg.SessionsHandler.JobStatus)
				r.Get("/{sessionID}/history", cfg.SessionsHandler.History)
				r.Delete("/{sessionID}", cfg.SessionsHandler.Close)
			})
		}

		if cfg.WebchatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
				r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				r.Get("/history", cfg.WebchatHandler.HandleHistory)
				if cfg.ChatRateLimit > 0 {
					r.With(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst)).Post("/message", cfg.WebchatHandler.HandleMessage)
				} else {
					r.Post("/message", cfg.WebchatHandler.HandleMessage)
				}
			})
		}
	})

	// Admin routes (protected by HMAC-signed JWT)
	if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			admin.Route("/leads", func(r chi.Router) {
				r.Get("/", cfg.LeadsHandler.List)
				r.Get("/export.csv", cfg.LeadsHandler.Export)
				r.Get("/stats", cfg.LeadsHandler.Stats)
				r.Get("/{leadID}", cfg.LeadsHandler.Get)
				r.Patch("/{leadID}", cfg.LeadsHandler.Update)
				r.Delete("/{leadID}", cfg.LeadsHandler.Remove)
			})
		})
	}

	return r
}
