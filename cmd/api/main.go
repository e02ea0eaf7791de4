package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/authsys-backend/api/routes"
	"github.com/angelmondragon/authsys-backend/internal/auth"
	"github.com/angelmondragon/authsys-backend/internal/users"
	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
	"github.com/angelmondragon/authsys-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/authsys-backend/pkg/redis"
	"github.com/angelmondragon/authsys-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	factory, err := db.NewFactory(cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build database factory", err)
		os.Exit(1)
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := factory.Provision(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to provision database", err)
		os.Exit(1)
	}
	if !factory.VerifyConnectivity(context.Background()) {
		logg.Error(context.Background(), "database connectivity probe failed", nil)
		os.Exit(1)
	}
	if err := factory.Migrate(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to migrate schema", err)
		os.Exit(1)
	}

	var idempotencyStore pkgredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotencyStore = redisClient
	}

	engine, err := factory.Engine()
	if err != nil {
		logg.Error(context.Background(), "failed to open database engine", err)
		os.Exit(1)
	}
	usersRepo := users.NewRepository(engine)
	hasher := security.NewHasher(cfg.Password)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		Verifier:  hasher,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner: factory,
		Hasher:   hasher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	resolver, err := auth.NewCurrentUserResolver(usersRepo, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create user resolver", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": factory.Backend().Name(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			DB:              factory,
			Redis:           idempotencyStore,
			Metrics:         metrics.NewHTTPMetrics(),
			AuthService:     authService,
			RegisterService: registerService,
			Resolver:        resolver,
			UsersRepo:       usersRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
