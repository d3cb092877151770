package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/models"
)

func setupSystemRoutes(r chi.Router, rt router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("App Working Properly"))
	})

	responder := NewResponder(log.With().Str("handlerName", "systemHandler").Logger())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteJSON(w, map[string]any{
			"status":  "ok",
			"uptime":  time.Since(rt.startupTime).Round(time.Second).String(),
			"startup": rt.startupTime.UTC().Format(time.RFC3339),
		})
	})

	if rt.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(rt.gatherer))
	}
	if rt.uploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(rt.uploadDir))))
	}
}

// setupAuthRoutes mounts /api/auth. Credential and OTP endpoints are rate limited per client.
func setupAuthRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limiter rateLimiter, rec metrics.Recorder) {
	limit := func(name string) func(http.Handler) http.Handler {
		if limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return rateLimitMiddleware(limiter, rec, name)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limit("register")).Post("/register", handlers.authHandler.register())
		r.With(limit("login")).Post("/login", handlers.authHandler.login())
		r.Post("/logout", handlers.authHandler.logout())
		r.With(limit("reset-password")).Post("/reset-password", handlers.authHandler.resetPassword())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/is-auth", handlers.authHandler.isAuthenticated())
			r.With(limit("email-otp")).Post("/emailOtp", handlers.authHandler.sendVerifyOtp())
			r.With(limit("verify-email")).Post("/verifyEmail", handlers.authHandler.verifyEmail())
			r.With(limit("reset-otp")).Post("/send-reset-otp", handlers.authHandler.sendResetOtp())
		})
	})
}

func setupBlogRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	admins := authMiddleware.requireRole(models.RoleAdmin, models.RoleMainAdmin)

	r.Route("/api/blogs", func(r chi.Router) {
		r.Get("/{blogPostID}", handlers.blogPostHandler.getBlogPost())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/", handlers.blogPostHandler.listBlogPosts())
			r.Get("/my", handlers.blogPostHandler.myBlogPosts())
			r.Put("/like/{blogPostID}", handlers.blogPostHandler.toggleLike())
			r.Post("/comment/{blogPostID}", handlers.blogPostHandler.addComment())

			r.With(admins).Post("/create", handlers.blogPostHandler.createBlogPost())
			r.With(admins).Put("/edit/{blogPostID}", handlers.blogPostHandler.editBlogPost())
			r.With(admins).Delete("/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())
		})
	})

	if handlers.ttsHandler != nil {
		r.Post("/api/tts", handlers.ttsHandler.synthesize())
	}
}

func setupUserRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/user", func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/data", handlers.userHandler.getUserData())
		r.With(authMiddleware.requireRole(models.RoleAdmin, models.RoleMainAdmin)).Get("/", handlers.userHandler.listUsers())
		r.With(authMiddleware.requireRole(models.RoleMainAdmin)).Put("/{userID}/role", handlers.userHandler.setRole())
	})
}
