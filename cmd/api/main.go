package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/popx/account-portal/internal/api/http"
	"github.com/popx/account-portal/internal/api/http/handlers"
	"github.com/popx/account-portal/internal/auth"
	"github.com/popx/account-portal/internal/config"
	"github.com/popx/account-portal/internal/events"
	"github.com/popx/account-portal/internal/observability"
	"github.com/popx/account-portal/internal/persistence"
	"github.com/popx/account-portal/internal/repository"
	"github.com/popx/account-portal/internal/service"
	"github.com/popx/account-portal/internal/session"
	"github.com/popx/account-portal/internal/storage"
	"github.com/popx/account-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	kv, err := storage.Open(storage.Options{
		Backend:    cfg.Storage.Backend,
		SQLitePath: cfg.Storage.SQLitePath,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		TTL:        cfg.Storage.RecordTTL(),
		Redis:      redis.ClientHandle(),
		Pool:       pg.PoolHandle(),
	})
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer kv.Close()
	logger.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	sessions := session.NewManager(session.ManagerDependencies{
		Persistence: func(clientID string) session.Persistence {
			return storage.NewUserRecord(kv, clientID)
		},
		Authenticator: newAuthenticator(cfg, pg.PoolHandle(), logger),
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})

	app, err := httptransport.NewApp(httptransport.AppOptions{
		Name:         cfg.App.Name,
		BodyLimit:    int(cfg.Session.MaxPictureBytes) + 64<<10,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	if err != nil {
		logger.Fatal("failed to build views", zap.Error(err))
	}
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	checks := map[string]handlers.Pinger{"storage": kv}
	if pg.PoolHandle() != nil {
		checks["postgres"] = pg
	}
	if cfg.Storage.Backend == config.BackendRedis {
		checks["redis"] = redis
	}

	var limiter *goredis.Client
	if err := redis.Ping(ctx); err == nil {
		limiter = redis.ClientHandle()
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics),
		Pages:   handlers.NewPagesHandler(cfg.Session.MaxPictureBytes, logger),
		Session: handlers.NewSessionHandler(),
		Client: auth.NewClientMiddleware(auth.ClientMiddlewareConfig{
			Tokens:     auth.NewClientTokens(cfg.Auth.ClientTokenSecret, cfg.Auth.ClientTokenTTL()),
			Sessions:   sessions,
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			Logger:     logger,
		}),
		LoginRateLimit: httptransport.LoginRateLimit(limiter, cfg.Auth.LoginAttemptsPerMin, logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(cfg.App.ShutdownTimeout()); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// newAuthenticator returns the mock unless accounts mode is configured.
func newAuthenticator(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) session.Authenticator {
	if cfg.Auth.Mode != config.AuthModeAccounts {
		logger.Info("using mock authenticator; any credentials are accepted")
		return auth.NewMock()
	}
	if pool == nil {
		logger.Warn("accounts mode without postgres; accounts are kept in memory")
	}
	return service.NewAccountService(repository.NewAccountRepository(pool), cfg.Auth.BcryptCost, logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
