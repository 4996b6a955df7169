package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/weight-tracker-be/internal/api/handlers"
	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// SchemaEnsurer prepares the store schema once the store is reachable.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Dependencies holds everything the router wires into its handlers.
type Dependencies struct {
	Logger       zerolog.Logger
	DB           handlers.Pinger
	Schema       SchemaEnsurer
	Accounts     services.AccountServiceProvider
	Sessions     services.SessionServiceProvider
	Clients      services.ClientServiceProvider
	Measurements services.MeasurementServiceProvider

	CORSOrigins []string
	Cookie      auth.CookieOptions
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
	if deps.Schema != nil {
		r.Use(ensureSchema(deps.Schema))
	}

	// The frontend runs on another origin and sends the session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions, deps.Cookie)
	clientHandler := handlers.NewClientHandler(deps.Clients)
	weightHandler := handlers.NewWeightHandler(deps.Measurements)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	routes := func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/login", authHandler.LoginRequired)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuthentication(deps.Sessions))
				r.Post("/logout", authHandler.Logout)
				r.Get("/user", authHandler.CurrentUser)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthentication(deps.Sessions))

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", clientHandler.GetAll)
				r.Post("/", clientHandler.Create)
				r.Get("/{id}", clientHandler.Get)
				r.Delete("/{id}", clientHandler.Delete)
			})

			r.Route("/weight", func(r chi.Router) {
				r.Post("/", weightHandler.Create)
				r.Get("/client/{clientID}", weightHandler.GetForClient)
				r.Put("/{id}", weightHandler.Update)
				r.Delete("/{id}", weightHandler.Delete)
			})
		})
	}

	// The frontend talks to /api; the bare paths stay for older clients.
	r.Route("/api", routes)
	r.Group(routes)

	return r
}

// ensureSchema migrates a store that was down at startup on the first
// request that finds it reachable. Failures are logged and the request
// proceeds; handlers report store errors themselves.
func ensureSchema(schema SchemaEnsurer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := schema.EnsureSchema(r.Context()); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("Database schema not ready")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Error()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
