package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Storefront/internal/config"
	"Storefront/internal/session"
	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.UsesDevSecret() {
		log.Warn("SESSION_SECRET not set, using development secret")
	}

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	var (
		reg     *prometheus.Registry
		metrics *storefront.Metrics
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = storefront.NewMetrics(reg)
	}

	s := storefront.NewServer(store, log, metrics)
	s.CheckoutLimiter = kit.NewIPRateLimiter(cfg.CheckoutRateLimit, time.Minute)

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:          log,
		Service:      service,
		Registry:     reg,
		MetricsToken: cfg.Metrics.Token,
		Sessions:     session.NewTokenMaker(cfg.Session.Secret),
		SessionOptions: session.Options{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.CookieSecure,
		},
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, kit.ServerOptions{
		ShutdownTimeout: cfg.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore picks Postgres when DATABASE_URL is set and the seeded memory
// store otherwise.
func openStore(cfg *config.Config, log *zap.Logger) (storefront.Store, func()) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return storefront.NewMemStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := storefront.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	store := storefront.NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}
	if err := store.Seed(ctx); err != nil {
		log.Fatal("seed database", zap.Error(err))
	}

	log.Info("using postgres store")
	return store, func() { _ = db.Close() }
}
