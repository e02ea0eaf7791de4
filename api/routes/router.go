package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/authsys-backend/api/controllers"
	"github.com/angelmondragon/authsys-backend/api/middleware"
	"github.com/angelmondragon/authsys-backend/internal/auth"
	"github.com/angelmondragon/authsys-backend/internal/users"
	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
	"github.com/angelmondragon/authsys-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/authsys-backend/pkg/redis"
)

type connectivityChecker interface {
	VerifyConnectivity(ctx context.Context) bool
}

type userResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Params collects everything the router wires together.
type Params struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              connectivityChecker
	Redis           pkgredis.IdempotencyStore
	Metrics         *metrics.HTTPMetrics
	AuthService     auth.Service
	RegisterService auth.RegisterService
	Resolver        userResolver
	UsersRepo       *users.Repository
}

func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.CORS),
	)
	if p.Metrics != nil {
		r.Use(p.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.DB, p.Logger))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(p.Redis, p.Logger)).Post("/register", controllers.AuthRegister(p.RegisterService, p.Logger))
		r.Post("/login", controllers.AuthLogin(p.AuthService, p.Logger))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(p.Resolver, p.Logger))

		r.Get("/me", controllers.UsersMe(p.Logger))
		r.Delete("/me", controllers.UsersDeactivateMe(p.UsersRepo, p.Logger))

		r.With(middleware.RequireRole(enums.UserRoleAdmin, p.Logger)).Get("/", controllers.UsersList(p.UsersRepo, p.Logger))
	})

	return r
}
