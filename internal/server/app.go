// Package server initializes and runs the dueDash backend: it opens the
// database, wires repositories and services, and starts the HTTP server
// that also carries the websocket chat endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/duedash/duedash/internal/logging"
	"github.com/duedash/duedash/internal/server/auth"
	"github.com/duedash/duedash/internal/server/config"
	"github.com/duedash/duedash/internal/server/httpapi"
	"github.com/duedash/duedash/internal/server/realtime"
	"github.com/duedash/duedash/internal/server/repositories/repomanager"
	"github.com/duedash/duedash/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	hub    *realtime.Hub
	http   *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := rm.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	guard := auth.NewSessionGuard([]byte(cfg.SecretKey), rm.Users(db))

	us := services.NewUserService(db, rm, cfg)
	ts := services.NewTodoService(db, rm)
	as := services.NewAttachmentService(db, rm, cfg)

	hub := realtime.NewHub(logger)
	wsHandler := realtime.NewHandler(hub, guard, logger)

	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, guard, us, ts, as, db, wsHandler)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		hub:    hub,
		http:   httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.hub.Shutdown()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
