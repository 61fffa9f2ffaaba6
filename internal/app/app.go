// Package app owns the process lifetime: it acquires the store, tracer, cache
// and HTTP listener in order and releases them in reverse.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/cache/redisclient"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
)

type App struct {
	cfg  config.Config
	log  *slog.Logger
	prom *observability.Prom

	mu       sync.Mutex
	releases []func(ctx context.Context) error
	listener net.Listener
	srv      *http.Server
	serveErr chan error
}

func New(cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		cfg:      cfg,
		log:      log,
		prom:     observability.NewProm(),
		serveErr: make(chan error, 1),
	}
}

// Start brings every dependency up and begins serving. On failure everything
// acquired so far is released before the error is returned.
func (a *App) Start(ctx context.Context) (err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.srv != nil {
		return errors.New("app already started")
	}

	defer func() {
		if err != nil {
			a.releaseLocked(context.Background())
		}
	}()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: a.cfg.ServiceName,
		Env:         a.cfg.Env,
		Endpoint:    a.cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.onStop(shutdownTracer)

	store, err := db.Open(ctx, a.cfg.DatabaseURL, a.prom)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.onStop(func(context.Context) error {
		store.Close()
		return nil
	})
	a.log.Info("store ready", "kind", store.Kind)

	profiles, err := a.profileCache(ctx)
	if err != nil {
		return err
	}

	tokens := auth.NewManager(a.cfg.JWTSecret, a.cfg.JWTTTL)

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:            a.cfg.Env,
		ServiceName:    a.cfg.ServiceName,
		Log:            a.log,
		Prom:           a.prom,
		Tokens:         tokens,
		Accounts:       service.NewAccountService(store.Users, security.Hasher{}, tokens, a.prom, a.log),
		Profiles:       service.NewProfileService(store.Users, profiles, a.log),
		Tasks:          service.NewTaskService(store.Tasks),
		Ping:           store.Ping,
		AllowedOrigins: a.cfg.ClientOrigins,
		MaxBodyBytes:   a.cfg.MaxBodyBytes,
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	a.listener = ln
	a.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srv := a.srv
	go func() {
		a.log.Info("Server starting", "addr", ln.Addr().String(), "env", a.cfg.Env)

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	return nil
}

func (a *App) profileCache(ctx context.Context) (service.ProfileCache, error) {
	if a.cfg.RedisURL == "" {
		return cache.NewMemoryProfiles(a.cfg.ProfileCacheTTL), nil
	}

	rc, err := redisclient.New(a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.onStop(func(context.Context) error { return rc.Close() })

	pingCtx, cancel := config.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return cache.NewRedisProfiles(rc.Raw(), a.cfg.ProfileCacheTTL), nil
}

// Addr is the bound listener address, empty before Start.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Done yields a serve failure, or closes when the server stops cleanly.
func (a *App) Done() <-chan error {
	return a.serveErr
}

// Stop drains in-flight requests, then closes the cache, store and tracer.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error

	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	errs = append(errs, a.releaseLocked(ctx)...)

	return errors.Join(errs...)
}

func (a *App) onStop(fn func(ctx context.Context) error) {
	a.releases = append(a.releases, fn)
}

func (a *App) releaseLocked(ctx context.Context) []error {
	var errs []error
	for i := len(a.releases) - 1; i >= 0; i-- {
		if err := a.releases[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.releases = nil
	return errs
}
