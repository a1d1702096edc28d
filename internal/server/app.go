// Package server initializes and runs the BugRadar server: it selects the
// storage backend, applies migrations, wires the services and runs the HTTP
// API and the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/bugradar/internal/dbx"
	"github.com/dmitrijs2005/bugradar/internal/logging"
	"github.com/dmitrijs2005/bugradar/internal/server/auth"
	"github.com/dmitrijs2005/bugradar/internal/server/config"
	"github.com/dmitrijs2005/bugradar/internal/server/httpapi"
	"github.com/dmitrijs2005/bugradar/internal/server/notify"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/memory"
	"github.com/dmitrijs2005/bugradar/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bugradar/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/bugradar/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	store    httpapi.Pinger
	api      *httpapi.API
	notifier *notify.Async
}

// openBackend returns the service backend, the
// handle used for health pings and the *sql.DB to close (nil for memory).
var openBackend = func(ctx context.Context, c *config.Config) (services.Backend, httpapi.Pinger, *sql.DB, error) {
	switch c.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		return services.Backend{Tx: store, Repos: store}, store, nil, nil
	case config.StoragePostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return services.Backend{}, nil, nil, err
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return services.Backend{}, nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return services.Backend{DB: db, Tx: dbx.NewSQLTransactor(db, nil), Repos: rm}, db, db, nil
	}
	return services.Backend{}, nil, nil, fmt.Errorf("unknown storage %q", c.Storage)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(logging.ParseLevel(c.LogLevel))

	b, pinger, db, err := openBackend(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	notifier := notify.NewAsync(notify.Multi{
		notify.NewEmailNotifier(c, logger),
		notify.NewSMSNotifier(c.AppName, logger),
	}, logger)

	gate := services.NewGate(b)
	scores := services.NewScoreService(b, c.RecalcWorkers, logger)
	tags := services.NewTagService(b, gate)
	bugs := services.NewBugService(b, gate, tags, logger)
	comments := services.NewCommentService(b, gate, logger)

	api := httpapi.NewAPI(httpapi.Services{
		Gate:       gate,
		Users:      services.NewUserService(b, gate, logger),
		Bugs:       bugs,
		Comments:   comments,
		Votes:      services.NewVoteService(b, gate, scores, logger),
		Tags:       tags,
		Images:     services.NewImageService(gate, c),
		Moderation: services.NewModerationService(b, gate, bugs, comments, scores, notifier, logger),
	}, auth.NewJWTVerifier(c.SecretKey), pinger, logger)

	return &App{config: c, logger: logger, db: db, store: pinger, api: api, notifier: notifier}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.api.Routes(), app.config.ShutdownTimeout, app.logger)
		return s.Run(gctx)
	})

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.store, 5*time.Second, app.logger)
		return s.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	app.shutdown()
	return err
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	if err := app.notifier.Wait(ctx); err != nil {
		app.logger.Warn(ctx, "pending notifications dropped", "error", err)
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
