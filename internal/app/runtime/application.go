// Package runtime wires configuration, storage and the HTTP server into a
// runnable storefront process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/ethanscookies/storefront/internal/app"
	"github.com/ethanscookies/storefront/internal/app/httpapi"
	"github.com/ethanscookies/storefront/internal/app/metrics"
	"github.com/ethanscookies/storefront/internal/app/storage/memory"
	"github.com/ethanscookies/storefront/internal/app/storage/postgres"
	"github.com/ethanscookies/storefront/internal/config"
	"github.com/ethanscookies/storefront/internal/middleware"
	"github.com/ethanscookies/storefront/internal/platform/migrations"
	"github.com/ethanscookies/storefront/pkg/logger"

	"github.com/ethanscookies/storefront/internal/app/domain/catalogue"
)

// Application wires core dependencies and manages the process lifecycle.
type Application struct {
	cfg       *config.Config
	log       *logger.Logger
	app       *app.Application
	db        *sql.DB
	auditSink *httpapi.FileAuditSink
}

// NewApplication constructs an application from the config file at path.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logging)

	stores, db, err := buildStores(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	application, err := app.New(stores, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	auditSink, err := httpapi.NewFileAuditSink(cfg.Server.AuditFile)
	if err != nil {
		log.WithError(err).Warn("audit file unavailable, keeping trail in memory only")
	}
	audit := httpapi.NewAuditLog(0, auditSink)

	var handler http.Handler = httpapi.NewHandler(application, audit)
	handler = audit.Wrap(handler)
	handler = middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler(handler)
	if cfg.Server.RatePerSecond > 0 {
		handler = middleware.NewRateLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst, log).Handler(handler)
	}
	handler = metrics.InstrumentHandler(handler)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := application.Attach(&httpService{server: srv, log: log}); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("attach http server: %w", err)
	}

	return &Application{
		cfg:       cfg,
		log:       log,
		app:       application,
		db:        db,
		auditSink: auditSink,
	}, nil
}

// Run starts all services and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}
	a.log.Infof("storefront listening on %s", a.cfg.Addr())
	<-ctx.Done()
	return nil
}

// Shutdown stops the services and releases held resources.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := a.app.Stop(shutdownCtx)

	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil {
			a.log.WithError(cerr).Warn("error closing database connection")
		}
	}
	if cerr := a.auditSink.Close(); cerr != nil {
		a.log.WithError(cerr).Warn("error closing audit file")
	}
	return err
}

// buildStores opens Postgres when a DSN is configured, applying migrations on
// the way up. Without a DSN it falls back to a seeded in-memory store.
func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		log.Warn("no database configured, using in-memory store")
		mem := memory.New()
		mem.SeedProducts(catalogue.Defaults())
		return app.Stores{Catalogue: mem, Users: mem, Orders: mem, Feedback: mem}, nil, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.Apply(migrateCtx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}

	store := postgres.New(db)
	return app.Stores{Catalogue: store, Users: store, Orders: store, Feedback: store}, db, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// httpService adapts the HTTP server to the lifecycle manager.
type httpService struct {
	server *http.Server
	log    *logger.Logger
	errCh  chan error
}

func (s *httpService) Name() string { return "http" }

func (s *httpService) Start(_ context.Context) error {
	s.errCh = make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("http server stopped")
			s.errCh <- err
		}
	}()

	// Give an unbindable address a beat to surface instead of reporting a
	// started server that already died.
	select {
	case err := <-s.errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *httpService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
