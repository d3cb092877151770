package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/config"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(settings config.Settings, database database.Database, opts ...RouterOption) Server {
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	opts = append([]RouterOption{withStartupTime(startupTime)}, opts...)
	router := newRouter(settings, database, opts...)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}
}

// RouterOption supplies a collaborator to the router. Anything not supplied
// falls back to a default built from the settings.
type RouterOption func(*router)

type router struct {
	settings    config.Settings
	startupTime time.Time

	authService *services.AuthService
	blogService *services.BlogService
	storage     services.FileStorage
	uploadDir   string
	speech      *services.SpeechSynthesizer
	recorder    metrics.Recorder
	gatherer    prometheus.Gatherer
	redis       *redis.Client
}

func withStartupTime(startupTime time.Time) RouterOption {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func WithAuthService(s *services.AuthService) RouterOption {
	return func(r *router) {
		r.authService = s
	}
}

func WithBlogService(s *services.BlogService) RouterOption {
	return func(r *router) {
		r.blogService = s
	}
}

// WithStorage sets where uploads go. A non-empty localDir is also served at /uploads.
func WithStorage(storage services.FileStorage, localDir string) RouterOption {
	return func(r *router) {
		r.storage = storage
		r.uploadDir = localDir
	}
}

func WithSpeech(s *services.SpeechSynthesizer) RouterOption {
	return func(r *router) {
		r.speech = s
	}
}

// WithMetrics records request metrics on rec and serves gatherer at /metrics.
func WithMetrics(rec metrics.Recorder, gatherer prometheus.Gatherer) RouterOption {
	return func(r *router) {
		r.recorder = rec
		r.gatherer = gatherer
	}
}

// WithRedis shares rate limit windows across instances.
func WithRedis(client *redis.Client) RouterOption {
	return func(r *router) {
		r.redis = client
	}
}

func newRouter(settings config.Settings, database database.Database, opts ...RouterOption) *chi.Mux {
	router := router{settings: settings}
	for _, opt := range opts {
		opt(&router)
	}
	if router.recorder == nil {
		router.recorder = metrics.Nop{}
	}
	if router.authService == nil {
		router.authService = services.NewAuthService(
			database.UserRepo(),
			auth.NewBcryptHasher(auth.DefaultBcryptCost),
			auth.NewTokenIssuer(settings.JWTSecret, settings.TokenTTL),
			nil,
			router.recorder,
			log.Logger,
		).WithPrivilegedSignup(settings.PrivilegedSignup)
	}
	if router.blogService == nil {
		router.blogService = services.NewBlogService(database, services.NewSanitizer(), router.recorder, log.Logger)
	}
	if router.speech == nil && router.storage != nil {
		router.speech = services.NewSpeechSynthesizer(settings.TTSBaseURL, router.storage)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	if settings.TrustProxyHeaders {
		chiRouter.Use(middleware.RealIP)
	}

	// Apply CORS middleware
	chiRouter.Use(CORSCheckMiddleware(settings.AcceptedOrigins))
	chiRouter.Use(corsMiddleware(settings.AcceptedOrigins))
	chiRouter.Use(ColoredHTTPLoggingMiddleware)
	chiRouter.Use(metricsMiddleware(router.recorder))

	handlers := initializeHandlers(router, newCookiePolicy(settings.IsProduction(), settings.TokenTTL))
	authMiddleware := newAuthMiddleware(router.authService)

	var limiter rateLimiter
	switch {
	case settings.RateLimitPerMinute <= 0:
	case router.redis != nil:
		limiter = newRedisLimiter(router.redis, settings.RateLimitPerMinute)
	default:
		limiter = newMemoryLimiter(settings.RateLimitPerMinute)
	}

	setupSystemRoutes(chiRouter, router)
	setupAuthRoutes(chiRouter, handlers, authMiddleware, limiter, router.recorder)
	setupBlogRoutes(chiRouter, handlers, authMiddleware)
	setupUserRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func corsMiddleware(acceptedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
