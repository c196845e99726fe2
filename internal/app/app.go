package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/artauction/internal/closer"
	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/handlers"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/internal/repo"
	"github.com/GlebRadaev/artauction/internal/service"
	"github.com/GlebRadaev/artauction/pkg/logger"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	api    *handlers.Handlers
	srv    *service.Services
	repo   *repo.Repositories
	closer *closer.Closer

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()
	a.cfg = cfg

	err := logger.InitLogger(logger.Options{
		Service: "artauction",
		Level:   cfg.LogLvl,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	a.pool, err = getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if _, err := pg.RunMigrations(ctx, a.pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}

	if err := a.build(); err != nil {
		return err
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	if err = a.closer.Start(ctx); err != nil {
		return fmt.Errorf("can't start auction closer: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func (a *Application) build() error {
	txManager := pg.NewTXManager(a.pool)
	a.repo = repo.New(pg.New(a.pool), txManager)

	srv, err := service.New(a.repo, txManager, a.cfg)
	if err != nil {
		return fmt.Errorf("can't build services: %w", err)
	}
	a.srv = srv
	a.api = handlers.New(a.srv, a.cfg)
	a.closer = closer.New(a.cfg, a.srv.BiddingService)
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := &http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server", zap.String("address", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
