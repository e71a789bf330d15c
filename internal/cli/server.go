package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bersena911/quizapi/internal/app"
	"github.com/bersena911/quizapi/internal/config"
	"github.com/bersena911/quizapi/internal/infra/memory"
	"github.com/bersena911/quizapi/internal/infra/postgres"
	rediscache "github.com/bersena911/quizapi/internal/infra/redis"
	"github.com/bersena911/quizapi/internal/logging"
	"github.com/bersena911/quizapi/internal/metrics"
	transport "github.com/bersena911/quizapi/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backend is the storage a server instance runs on.
type backend struct {
	catalog app.CatalogStore
	games   app.GameRepository
	quizzes app.QuizRepository
	storage map[string]transport.Pinger
	closers []func() error
}

func (b *backend) close(logger *zap.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close(logger)

	m := metrics.New()
	games := app.NewGameService(b.games, b.catalog, b.quizzes, app.WithObserver(m), app.WithLogger(logger))
	quizzes := app.NewQuizService(b.catalog, b.games, app.WithLogger(logger))

	gin.SetMode(cfg.Server.Mode)
	router := transport.NewRouter(transport.RouterConfig{
		Games:       games,
		Quizzes:     quizzes,
		Metrics:     m,
		Logger:      logger,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		CORSOrigins: cfg.Server.CORSOrigins,
		Storage:     b.storage,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting quiz api", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackend picks postgres when a database url is configured and memory
// otherwise. Redis, when configured, fronts the published quiz read path.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{storage: map[string]transport.Pinger{}}
	var loader memory.QuizLoader

	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, db.Close)
		if cfg.Postgres.Migrate {
			if _, err := postgres.Migrate(ctx, db); err != nil {
				b.close(logger)
				return nil, err
			}
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close(logger)
			return nil, fmt.Errorf("connect pgx pool: %w", err)
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })

		catalog := postgres.NewCatalog(db)
		pgLoader := postgres.NewQuizLoader(pool)
		b.catalog = catalog
		b.games = postgres.NewGameStore(db)
		b.storage["postgres"] = catalog
		loader = pgLoader
		logger.Info("using postgres storage")
	} else {
		catalog := memory.NewCatalog()
		b.catalog = catalog
		b.games = memory.NewGameStore()
		loader = catalog
		logger.Info("using in-memory storage")
	}

	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, client.Close)
		cache := rediscache.NewQuizCache(client, loader, ttl, logger)
		b.quizzes = cache
		b.storage["redis"] = cache
	} else {
		b.quizzes = memory.NewQuizCache(loader, ttl)
	}
	return b, nil
}
