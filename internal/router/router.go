package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/mdpress/mdpress/internal/middleware"
	"github.com/mdpress/mdpress/internal/middleware/metrics"
	rl "github.com/mdpress/mdpress/internal/middleware/ratelimiter"
	"github.com/mdpress/mdpress/internal/setup"
)

// New creates and configures the application router.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that group
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		r.Route("/auth", func(r chi.Router) {
			// Email sending is the most abusable endpoint, keep limits tight
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimit(rl.New(1.0/60, 1, 1*time.Hour), mw.GetEmailFromBody)) // 1 per minute by email
				r.Use(mw.RateLimit(rl.New(1.0/10, 3, 1*time.Hour), mw.GetIP))            // burst of 3, then 1 per 10s by IP
				r.Use(mw.GlobalRateLimit(rl.New(100, 100, 1*time.Hour)))
				r.Post("/send-verification-code", h.SendVerificationCode)
			})

			// Code consumption endpoints get brute-force protection by email
			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimit(rl.New(5.0/600, 5, 1*time.Hour), mw.GetEmailFromBody)) // 5 attempts per 10 minutes by email
				r.Use(mw.GlobalRateLimit(rl.New(100, 100, 1*time.Hour)))
				r.Post("/register", h.Register)
				r.Post("/reset-password", h.ResetPassword)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimit(rl.New(1, 5, 1*time.Hour), mw.GetIP)) // burst of 5, then 1 per second by IP
				r.Use(mw.GlobalRateLimit(rl.New(1000, 1000, 1*time.Hour)))
				r.Post("/login", h.Login)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", h.ListBlogs)
			r.Get("/{id}", h.GetBlog)

			r.Group(func(r chi.Router) {
				r.Use(authMw.NeedAuth())
				r.Post("/", h.CreateBlog)
				r.Put("/{id}", h.UpdateBlog)
				r.Delete("/{id}", h.DeleteBlog)
			})
		})
	})

	return r
}
