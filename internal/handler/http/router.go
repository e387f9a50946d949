package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/wishwell/internal/service"
	"github.com/utafrali/wishwell/pkg/health"
	"github.com/utafrali/wishwell/pkg/middleware"
)

// NewRouter creates a chi router with all routes registered. Authentication
// is mandatory everywhere except share-link resolution, where a valid token
// only enriches the request.
func NewRouter(
	userService *service.UserService,
	wishlistService *service.WishlistService,
	sharedLinkService *service.SharedLinkService,
	validate middleware.TokenValidator,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishwell"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	userHandler := NewUserHandler(userService, logger)
	wishlistHandler := NewWishlistHandler(wishlistService, logger)
	sharedLinkHandler := NewSharedLinkHandler(sharedLinkService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public read path. Identity is optional and only used for visit
		// tracking.
		r.With(middleware.OptionalAuth(validate)).
			Get("/shared-links/{code}", sharedLinkHandler.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))

			r.Post("/users/register", userHandler.Register)
			r.Get("/users/me", userHandler.GetMe)
			r.Put("/users/me", userHandler.UpdateMe)

			r.Get("/wishlists", wishlistHandler.List)
			r.Post("/wishlists", wishlistHandler.Create)
			r.Put("/wishlists/reorder", wishlistHandler.Reorder)
			r.Get("/wishlists/{wishlistID}", wishlistHandler.Get)
			r.Put("/wishlists/{wishlistID}", wishlistHandler.Update)
			r.Delete("/wishlists/{wishlistID}", wishlistHandler.Delete)

			r.Get("/wishlists/{wishlistID}/items", wishlistHandler.ListItems)
			r.Post("/wishlists/{wishlistID}/items", wishlistHandler.AddItem)
			r.Put("/items/{itemID}", wishlistHandler.UpdateItem)
			r.Delete("/items/{itemID}", wishlistHandler.DeleteItem)
			r.Post("/items/{itemID}/reserve", wishlistHandler.ToggleReservation)

			r.Post("/wishlists/{wishlistID}/share", sharedLinkHandler.Create)
			r.Get("/shared-with-me", sharedLinkHandler.SharedWithMe)
		})
	})

	return r
}
