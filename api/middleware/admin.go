package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/milletmart/milletmart-backend/api/responses"
	"github.com/milletmart/milletmart-backend/pkg/auth/session"
	"github.com/milletmart/milletmart-backend/pkg/config"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/logger"
)

// AdminVerifier checks one credential form on a request. Admitted is false
// when the credential is absent or wrong; a non-nil error means the check
// itself could not run.
type AdminVerifier interface {
	Name() string
	Verify(r *http.Request) (userID string, admitted bool, err error)
}

// AdminPolicy admits a request when any of its verifiers does. This is the
// single authorization decision for the admin surface; routes never inspect
// credentials themselves.
type AdminPolicy struct {
	verifiers []AdminVerifier
}

// NewAdminPolicy builds a policy from the verifiers, tried in order.
func NewAdminPolicy(verifiers ...AdminVerifier) *AdminPolicy {
	return &AdminPolicy{verifiers: verifiers}
}

// Admit runs the verifiers and returns the admitting verifier's name and the
// resolved user id (empty for key callers).
func (p *AdminPolicy) Admit(r *http.Request) (userID, via string, err error) {
	for _, v := range p.verifiers {
		userID, admitted, err := v.Verify(r)
		if err != nil {
			return "", "", err
		}
		if admitted {
			return userID, v.Name(), nil
		}
	}
	return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "admin credentials required")
}

// KeyVerifier admits callers presenting the shared admin secret.
type KeyVerifier struct {
	header string
	secret string
}

// NewKeyVerifier builds the shared-secret verifier from admin config.
func NewKeyVerifier(cfg config.AdminConfig) *KeyVerifier {
	return &KeyVerifier{header: cfg.KeyHeader, secret: cfg.Key}
}

func (v *KeyVerifier) Name() string { return "key" }

func (v *KeyVerifier) Verify(r *http.Request) (string, bool, error) {
	presented := strings.TrimSpace(r.Header.Get(v.header))
	if presented == "" || v.secret == "" {
		return "", false, nil
	}
	ok := subtle.ConstantTimeCompare([]byte(presented), []byte(v.secret)) == 1
	return "", ok, nil
}

// SessionVerifier admits callers holding a live session token, taken from
// the token header or the session cookie.
type SessionVerifier struct {
	header   string
	cookie   string
	sessions session.Validator
}

// NewSessionVerifier builds the session-token verifier.
func NewSessionVerifier(cfg config.AdminConfig, sessions session.Validator) *SessionVerifier {
	return &SessionVerifier{header: cfg.TokenHeader, cookie: cfg.CookieName, sessions: sessions}
}

func (v *SessionVerifier) Name() string { return "session" }

func (v *SessionVerifier) Verify(r *http.Request) (string, bool, error) {
	token := TokenFromRequest(r, v.header, v.cookie)
	if token == "" || v.sessions == nil {
		return "", false, nil
	}

	userID, err := v.sessions.Validate(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate admin session")
	}
	return userID, true, nil
}

// TokenFromRequest extracts the admin session token from the header or
// cookie, header winning.
func TokenFromRequest(r *http.Request, header, cookie string) string {
	if token := strings.TrimSpace(r.Header.Get(header)); token != "" {
		return token
	}
	if cookie == "" {
		return ""
	}
	if c, err := r.Cookie(cookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// RequireAdmin gates a subtree behind the admin policy and seeds the request
// context with the admitted identity.
func RequireAdmin(policy *AdminPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, via, err := policy.Admit(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithAdminIdentity(r.Context(), userID, via)
			if logg != nil {
				fields := map[string]any{"admin_via": via}
				if userID != "" {
					fields["admin_user_id"] = userID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
