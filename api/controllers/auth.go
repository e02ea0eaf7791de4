package controllers

import (
	"net/http"

	"github.com/angelmondragon/authsys-backend/api/responses"
	"github.com/angelmondragon/authsys-backend/api/validators"
	"github.com/angelmondragon/authsys-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
)

// AuthRegister creates a new account. No token is issued; the client logs in
// as a second step.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := reg.Register(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSONStatus(w, http.StatusCreated, auth.RegisterResponse{Message: "user created successfully"})
	}
}

// AuthLogin exchanges form credentials for a bearer token. The username field
// accepts either email or username.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var form auth.LoginRequest
		if err := validators.DecodeForm(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, result)
	}
}
