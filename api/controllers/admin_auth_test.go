package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/milletmart/milletmart-backend/api/middleware"
	authsvc "github.com/milletmart/milletmart-backend/internal/auth"
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
)

type stubAuthService struct {
	login   *authsvc.LoginResult
	setup   *authsvc.OTPSetup
	user    *models.User
	err     error
	revoked string
}

func (s *stubAuthService) Login(context.Context, string, string) (*authsvc.LoginResult, error) {
	return s.login, s.err
}

func (s *stubAuthService) VerifyOTP(context.Context, string, string, string) (*authsvc.LoginResult, error) {
	return s.login, s.err
}

func (s *stubAuthService) SetupOTP(context.Context, uuid.UUID) (*authsvc.OTPSetup, error) {
	return s.setup, s.err
}

func (s *stubAuthService) VerifySetup(context.Context, uuid.UUID, string, string) error {
	return s.err
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.revoked = token
	return s.err
}

func (s *stubAuthService) Identity(context.Context, uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func adminCfg() config.AdminConfig {
	return config.AdminConfig{
		CookieName:  "admin_token",
		TokenHeader: "X-Admin-Token",
		SessionTTL:  time.Hour,
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "admin_token" {
			return c
		}
	}
	return nil
}

func TestAdminLoginSetsCookie(t *testing.T) {
	stub := &stubAuthService{login: &authsvc.LoginResult{
		Token: "tok-123",
		User:  &models.User{Username: "admin"},
	}}

	body := `{"username":"admin","password":"pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AdminLogin(stub, adminCfg(), testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if cookie.Value != "tok-123" {
		t.Errorf("cookie value = %q, want tok-123", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
}

func TestAdminLoginOTPRequired(t *testing.T) {
	stub := &stubAuthService{login: &authsvc.LoginResult{OTPRequired: true}}

	body := `{"username":"admin","password":"pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AdminLogin(stub, adminCfg(), testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Error("no cookie should be issued before the TOTP step")
	}
	if !strings.Contains(rec.Body.String(), "otp_required") {
		t.Errorf("body = %s, want otp_required marker", rec.Body.String())
	}
}

func TestAdminLoginBadCredentials(t *testing.T) {
	stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}

	body := `{"username":"admin","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AdminLogin(stub, adminCfg(), testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminVerifyOTPRequiresSixDigitCode(t *testing.T) {
	body := `{"username":"admin","password":"pass","code":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/verify-otp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AdminVerifyOTP(&stubAuthService{}, adminCfg(), testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short code, got %d", rec.Code)
	}
}

func TestAdminSetupOTPForbiddenForKeyCallers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/setup-otp", nil)
	req = req.WithContext(middleware.WithAdminIdentity(req.Context(), "", "key"))
	rec := httptest.NewRecorder()
	AdminSetupOTP(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for key-authenticated caller, got %d", rec.Code)
	}
}

func TestAdminSetupOTPReturnsSecret(t *testing.T) {
	stub := &stubAuthService{setup: &authsvc.OTPSetup{Secret: "ABC234", URL: "otpauth://totp/x"}}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/setup-otp", nil)
	req = req.WithContext(middleware.WithAdminIdentity(req.Context(), uuid.NewString(), "session"))
	rec := httptest.NewRecorder()
	AdminSetupOTP(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ABC234") {
		t.Errorf("body = %s, want secret", rec.Body.String())
	}
}

func TestAdminLogoutRevokesAndClearsCookie(t *testing.T) {
	stub := &stubAuthService{}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: "tok-9"})
	rec := httptest.NewRecorder()
	AdminLogout(stub, adminCfg(), testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.revoked != "tok-9" {
		t.Errorf("revoked = %q, want tok-9", stub.revoked)
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Errorf("cookie = %+v, want MaxAge -1", cookie)
	}
}

func TestAdminSessionKeyCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req = req.WithContext(middleware.WithAdminIdentity(req.Context(), "", "key"))
	rec := httptest.NewRecorder()
	AdminSession(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"via":"key"`) {
		t.Errorf("body = %s, want via key", rec.Body.String())
	}
}

func TestAdminSessionResolvesUser(t *testing.T) {
	stub := &stubAuthService{user: &models.User{Username: "admin"}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req = req.WithContext(middleware.WithAdminIdentity(req.Context(), uuid.NewString(), "session"))
	rec := httptest.NewRecorder()
	AdminSession(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "admin") {
		t.Errorf("body = %s, want resolved user", rec.Body.String())
	}
}
