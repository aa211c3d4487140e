package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicdesk/booking-ai/internal/http/handlers"
	httpmiddleware "github.com/clinicdesk/booking-ai/internal/http/middleware"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Sessions           *handlers.SessionHandler
	Chat               *handlers.ChatHandler
	Appointments       *handlers.AppointmentHandler
	WS                 *handlers.WSHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ChatRatePerSecond limits POST /chat per client IP when > 0.
	ChatRatePerSecond float64
	ChatRateBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", cfg.Sessions.Create)
			r.Get("/", cfg.Sessions.List)
			r.Get("/{sessionID}", cfg.Sessions.Get)
			r.Delete("/{sessionID}", cfg.Sessions.Delete)
		})
		r.Post("/cleanup", cfg.Sessions.Cleanup)
	}

	if cfg.Chat != nil {
		r.Group(func(r chi.Router) {
			if cfg.ChatRatePerSecond > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst))
			}
			r.Post("/chat", cfg.Chat.Send)
		})
		r.Get("/chat-history/{sessionID}", cfg.Chat.History)
	}

	if cfg.Appointments != nil {
		r.Get("/doctors", cfg.Appointments.Doctors)
		r.Get("/doctors/{doctorKey}/slots", cfg.Appointments.Slots)
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", cfg.Appointments.Reserve)
			r.Get("/{appointmentID}", cfg.Appointments.Get)
		})
	}

	if cfg.WS != nil {
		r.Get("/ws/{sessionID}", cfg.WS.Serve)
	}

	return r
}
