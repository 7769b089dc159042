package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter registers every endpoint. limiter guards /auth/*; nil disables
// rate limiting. An empty corsOrigins allows every origin, without
// credentials.
func NewRouter(h *HandlerProvider, corsOrigins []string, limiter *ClientRateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(h.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: len(corsOrigins) > 0,
		MaxAge:           300,
	}))

	r.Get("/check", h.CheckHandler)
	r.Get("/healthz", h.HealthzHandler)
	r.Get("/db/ping", h.DBPingHandler)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Handler)
		}

		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
	})

	r.Get("/gallery", h.GalleryHandler)

	r.Get("/profile/me", h.ProfileHandler)
	r.Get("/profile/purchased", h.PurchasedHandler)
	r.Get("/profile/movements", h.MovementsHandler)
	r.Put("/profile", h.UpdateProfileHandler)
	r.Post("/profile/topup", h.TopUpHandler)
	r.Post("/profile/upload", h.UploadProfileHandler)

	r.Post("/purchase", h.PurchaseHandler)

	r.Post("/s3/presign", h.PresignHandler)
	r.Post("/s3/presign-profile", h.PresignProfileHandler)

	return r
}
