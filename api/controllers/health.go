package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/authsys-backend/api/responses"
	"github.com/angelmondragon/authsys-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
)

type connectivityChecker interface {
	VerifyConnectivity(ctx context.Context) bool
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Authsys-Env", cfg.App.Env)
		responses.WriteJSON(w, map[string]string{"status": "live"})
	}
}

// HealthReady answers 503 until the database responds to a probe query.
func HealthReady(cfg *config.Config, db connectivityChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Authsys-Env", cfg.App.Env)
		if db == nil || !db.VerifyConnectivity(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		responses.WriteJSON(w, map[string]string{"status": "ready"})
	}
}
