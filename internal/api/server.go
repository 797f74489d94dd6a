// Package api provides the HTTP API server and handlers for the Mughouse
// admin backend.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mughouse/mughouse-server/internal/sse"
	"github.com/mughouse/mughouse-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	sseHandler      *sse.Handler
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	s := &Server{
		store:           st,
		services:        services,
		sseHandler:      sseHandler,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}

	s.setupMiddleware()
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(claimsMiddleware(s.services.Auth))
}

// setupAPI creates the huma API over the chi router.
func (s *Server) setupAPI() {
	config := huma.DefaultConfig("Mughouse API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()
}

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCategoryRoutes()
	s.registerProductRoutes()
	s.registerCustomerRoutes()
	s.registerOrderRoutes()
	s.registerSearchRoutes()

	// SSE is a long-lived plain http route outside huma. EventSource clients
	// authenticate via the token query parameter.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireClaims)
		r.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	})
}
