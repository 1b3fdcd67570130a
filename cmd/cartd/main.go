package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/internal/kv"
	"Storefront/pkg/kit"
)

func main() {
	service := "cart"
	log := kit.NewLogger(service, os.Getenv("LOG_MODE") == "dev")
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	jwtSecret := getenv("JWT_SECRET", "dev-secret")

	store, closeStore := openStorage(log)
	defer closeStore()

	products := openCatalog(log)

	s := &cart.Server{
		Store:   cart.NewStore(store, log),
		Catalog: products,
		JWT:     cart.NewTokenMaker(jwtSecret),
		Log:     log,
	}

	h := cart.NewHandler(s, &catalog.Server{Store: products, Log: log}, cart.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: os.Getenv("METRICS_ENABLED") == "1",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStorage picks the cart backend: memory (default), a local sqlite
// file, or postgres.
func openStorage(log *zap.Logger) (kv.Store, func()) {
	switch backend := getenv("CART_STORAGE", "memory"); backend {
	case "memory":
		return kv.NewMemStore(), func() {}

	case "sqlite":
		path := getenv("SQLITE_PATH", "cart.db")
		s, err := kv.NewSQLiteStore(path)
		if err != nil {
			log.Fatal("open sqlite storage", zap.Error(err), zap.String("path", path))
		}
		log.Info("cart storage", zap.String("backend", "sqlite"), zap.String("path", path))
		return s, func() { _ = s.Close() }

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL required for postgres storage")
		}
		s, err := kv.NewPostgresStore(dsn)
		if err != nil {
			log.Fatal("open postgres storage", zap.Error(err))
		}
		log.Info("cart storage", zap.String("backend", "postgres"))
		return s, func() { _ = s.Close() }

	default:
		log.Fatal("unknown CART_STORAGE", zap.String("backend", backend))
		return nil, nil
	}
}

func openCatalog(log *zap.Logger) catalog.Store {
	path := os.Getenv("CATALOG_FILE")
	if path == "" {
		return catalog.NewSeededStore()
	}

	s, err := catalog.Load(path)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err), zap.String("path", path))
	}
	log.Info("catalog loaded", zap.String("path", path))
	return s
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
