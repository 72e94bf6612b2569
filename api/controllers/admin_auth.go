package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/milletmart/milletmart-backend/api/middleware"
	"github.com/milletmart/milletmart-backend/api/responses"
	"github.com/milletmart/milletmart-backend/api/validators"
	authsvc "github.com/milletmart/milletmart-backend/internal/auth"
	"github.com/milletmart/milletmart-backend/pkg/config"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyOTPRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"required,len=6"`
}

type verifySetupRequest struct {
	Secret string `json:"secret" validate:"required"`
	Code   string `json:"code" validate:"required,len=6"`
}

func setSessionCookie(w http.ResponseWriter, cfg config.AdminConfig, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.AdminConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AdminLogin exchanges username/password for a session token, or reports
// that a TOTP code is required.
func AdminLogin(svc authsvc.Service, cfg config.AdminConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.OTPRequired {
			responses.WriteSuccess(w, map[string]any{"otp_required": true})
			return
		}

		setSessionCookie(w, cfg, result.Token, cfg.SessionTTL)
		responses.WriteSuccess(w, map[string]any{
			"token": result.Token,
			"user":  result.User,
		})
	}
}

// AdminVerifyOTP completes a TOTP-gated login.
func AdminVerifyOTP(svc authsvc.Service, cfg config.AdminConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyOTPRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyOTP(r.Context(), payload.Username, payload.Password, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, result.Token, cfg.SessionTTL)
		responses.WriteSuccess(w, map[string]any{
			"token": result.Token,
			"user":  result.User,
		})
	}
}

// adminUserID resolves the session-authenticated account behind the request.
// Key callers have no account and cannot manage TOTP enrollment.
func adminUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AdminUserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "a login session is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session identity")
	}
	return id, nil
}

// AdminSetupOTP generates a TOTP secret and provisioning URL without
// committing either.
func AdminSetupOTP(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := adminUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setup, err := svc.SetupOTP(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"secret": setup.Secret,
			"url":    setup.URL,
		})
	}
}

// AdminVerifySetup commits a TOTP secret after the caller proves possession
// of it.
func AdminVerifySetup(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := adminUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifySetupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.VerifySetup(r.Context(), userID, payload.Secret, payload.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "enabled"})
	}
}

// AdminLogout revokes the caller's session token and clears the cookie.
func AdminLogout(svc authsvc.Service, cfg config.AdminConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromRequest(r, cfg.TokenHeader, cfg.CookieName)
		if err := svc.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AdminSession reports the identity behind the current admin credentials.
func AdminSession(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		via := middleware.AdminViaFromContext(r.Context())
		raw := middleware.AdminUserIDFromContext(r.Context())

		if raw == "" {
			responses.WriteSuccess(w, map[string]any{"via": via})
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session identity"))
			return
		}

		account, err := svc.Identity(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"via":  via,
			"user": account,
		})
	}
}
