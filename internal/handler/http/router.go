package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Luiza-Bandeira/VarandaJK/internal/service"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/health"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/middleware"
)

// RouterConfig holds the settings the router needs beyond its handlers.
type RouterConfig struct {
	ServiceName      string
	CORS             middleware.CORSConfig
	MenuCacheSeconds int
}

// NewRouter creates a chi router with all menu, cart and order routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(catalogService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	orderHandler := NewOrderHandler(orderService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.MenuCacheSeconds))

			r.Get("/", catalogHandler.GetMenu)
			r.Get("/icons", catalogHandler.ListIcons)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session)
			r.Use(middleware.NoStore)
			r.Use(ContentTypeJSON)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/lines/{lineId}", cartHandler.SetQuantity)
				r.Delete("/lines/{lineId}", cartHandler.RemoveLine)
			})

			r.Post("/orders", orderHandler.SubmitOrder)
		})
	})

	return r
}
