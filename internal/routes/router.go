package routes

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/api"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// RouterOptions carries the knobs the router needs beyond the dependency graph.
type RouterOptions struct {
	UpSince        time.Time
	RedisClient    *redis.Client
	AllowedOrigins []string
	// Per-IP request budget; addresses in TrustedIPs are never throttled.
	RequestsPerSecond float64
	Burst             int
	TrustedIPs        []string
}

func RegisterRoutes(deps *api.Dependencies, opts RouterOptions) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://localhost:8081"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID",
			"X-Discord-Id", "X-Discord-Roles", "X-Discord-Admin",
		},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(deps.SQLX, opts.RedisClient, opts.UpSince))

	handlers := api.NewHandlers(deps)
	RegisterAPIRoutes(r, deps, handlers, opts)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
