package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/mall-web/internal/config"
	"finitefield.org/mall-web/internal/content"
	"finitefield.org/mall-web/internal/directory"
	"finitefield.org/mall-web/internal/handlers"
	"finitefield.org/mall-web/internal/i18n"
	mw "finitefield.org/mall-web/internal/middleware"
	"finitefield.org/mall-web/internal/prefs"
)

// app bundles the long-lived dependencies shared by every handler.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	bundle    *i18n.Bundle
	content   *content.Source
	catalog   []directory.Store
	prefs     prefs.Store
	registry  *directory.Registry
	sessions  *mw.Sessions
	views     *views
	analytics handlers.Analytics
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	bundle, err := i18n.Default(cfg.I18n.Fallback, cfg.I18n.Supported)
	if err != nil {
		return nil, err
	}

	catalog := directory.DemoCatalog()
	if err := directory.ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	store, err := prefs.Open(ctx, prefs.Config{
		Backend:     cfg.Prefs.Backend,
		SQLitePath:  cfg.Prefs.SQLitePath,
		RedisURL:    cfg.Prefs.RedisURL,
		RedisPrefix: cfg.Prefs.RedisPrefix,
		TTL:         cfg.Prefs.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	if cfg.Session.HashKey == "" {
		logger.Warn("session: using ephemeral signing key; set MALLWEB_SESSION__HASH_KEY for production")
	}
	sessions, err := mw.NewSessions(mw.SessionConfig{
		HashKey:  []byte(cfg.Session.HashKey),
		BlockKey: []byte(cfg.Session.BlockKey),
		Secure:   cfg.Session.Secure || cfg.IsProd(),
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       logger,
		bundle:    bundle,
		catalog:   catalog,
		prefs:     store,
		sessions:  sessions,
		analytics: handlers.AnalyticsFromConfig(cfg.Analytics),
		content: content.New(os.DirFS(cfg.Server.ContentDir), content.Options{
			Fallback: bundle.Fallback(),
		}),
		registry: directory.NewRegistry(directory.RegistryOptions{
			State: directory.Options{
				Catalog: catalog,
				// a zero delay serves the catalog without the simulated fetch
				Loaded:     cfg.Directory.FetchDelay == 0,
				Storage:    store,
				FetchDelay: cfg.Directory.FetchDelay,
				Logger:     logger,
			},
			IdleTTL:       cfg.Directory.IdleTTL,
			SweepInterval: cfg.Directory.SweepInterval,
		}),
	}
	a.views = newViews(cfg.Server.TemplatesDir, cfg.Server.DevMode, a.funcs())
	if !cfg.Server.DevMode {
		if err := a.views.load(); err != nil {
			a.Close()
			return nil, fmt.Errorf("parse templates: %w", err)
		}
	}
	return a, nil
}

// Close releases the registry and the preference store.
func (a *app) Close() {
	a.registry.Close()
	if err := a.prefs.Close(); err != nil {
		a.log.Warn("close preference store", zap.Error(err))
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(a.sessions.Middleware)
	r.Use(mw.Logger(a.log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.Theme)
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(os.DirFS(filepath.Join(a.cfg.Server.PublicDir, "assets"))))
	r.Handle("/assets/*", assets)

	r.Get("/", a.homeHandler)
	r.Get("/parking", a.contentPageHandler("parking"))
	r.Get("/contacts", a.contentPageHandler("contacts"))
	r.Post("/theme", a.themeHandler)

	r.Route("/stores", func(r chi.Router) {
		r.Get("/", a.storesHandler)
		r.Get("/results", a.storesResultsHandler)
		r.Get("/map", a.storesMapHandler)
		r.Post("/search", a.storesSearchHandler)
		r.Post("/category", a.storesCategoryHandler)
		r.Post("/floor", a.storesFloorHandler)
		r.Post("/view", a.storesViewHandler)
		r.Post("/toggle/{flag}", a.storesToggleHandler)
	})
	r.Get("/store/{id}", a.storeDetailHandler)

	r.NotFound(a.notFoundHandler)
	return r
}
