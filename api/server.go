/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address from X-Forwarded-For / X-Real-IP
  3. RequestLogger: One logrus line per request
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. Timeout:       Per-request deadline, cancels store calls
  6. CORS:          Cross-origin requests for the frontend
  7. Authenticate:  Bearer token -> session in the request context

ROUTE GROUPS:
  /api/bookings/*   Availability, quote, create, cancel
  /api/cabins/*     Cabin previews and next window
  /api/me/*         Caller's reservations
  /api/auth/*       Dev token issuance
  /api/scenarios/*  Demo scenarios
  /health           Liveness

AUTHENTICATION:
  Authenticate never rejects a request. Handlers that need a caller get
  *generic.AuthenticationError from the booking service, which maps to 401.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth/auth.go: Token verification
  - cmd/server/main.go: Server startup
*/
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/cabin-engine/auth"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if h.Tokens != nil {
		r.Use(auth.Authenticate(h.Tokens, h.Log))
	}

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/unavailable-dates", h.UnavailableDates)
			r.Post("/quote", h.Quote)
			r.Post("/", h.CreateBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
		})

		r.Route("/cabins", func(r chi.Router) {
			r.Get("/", h.ListCabins)
			r.Get("/{id}", h.GetCabin)
			r.Get("/{id}/next-available", h.NextAvailable)
		})

		r.Get("/me/bookings", h.MyBookings)

		r.Post("/auth/token", h.IssueToken)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
