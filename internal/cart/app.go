package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

const (
	mutationLimitPerMin = 120
	sessionLimitPerMin  = 10
	limitWindow         = time.Minute
	readyTimeout        = 1 * time.Second
)

// NewHandler wires the full storefront router: cart routes behind the
// shopper token, product routes public, plus health and metrics.
func NewHandler(s *Server, products *catalog.Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.RequestLogging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

		observeCartChanges(s.Store, deps.Registry)

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.handleReady)

	sessionLimiter := kit.NewIPRateLimiter(sessionLimitPerMin, limitWindow)
	r.With(sessionLimiter.Middleware).Post("/session", s.handleSession)

	if products != nil {
		r.Mount("/products", products.Routes())
	}

	mutationLimiter := kit.NewIPRateLimiter(mutationLimitPerMin, limitWindow)
	r.Group(func(pr chi.Router) {
		pr.Use(RequireShopper(s.JWT))

		pr.Get("/cart", s.handleGet)
		pr.Get("/cart/badge", s.handleBadge)
		pr.Get("/cart/view", s.handleView)

		pr.Group(func(mr chi.Router) {
			mr.Use(mutationLimiter.Middleware)
			mr.Post("/cart/items", s.handleAdd)
			mr.Put("/cart/items/{id}", s.handleSetQuantity)
			mr.Delete("/cart/items/{id}", s.handleRemove)
			mr.Delete("/cart", s.handleClear)
			mr.Post("/checkout", s.handleCheckout)
		})
	})

	return r
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// observeCartChanges registers a change listener that feeds prometheus.
// The listener contract carries the updated cart, so the last observed
// size and value ride along as free diagnostics.
func observeCartChanges(store *Store, reg *prometheus.Registry) {
	changes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_changes_total",
		Help: "Cart mutations observed (add, remove, set quantity, clear)",
	})
	items := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_items_after_change",
		Help:    "Item count after each cart mutation",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})
	reg.MustRegister(changes, items)

	store.Subscribe(func(owner string, c Cart) {
		changes.Inc()
		items.Observe(float64(c.Count()))
	})
}
