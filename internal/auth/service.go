package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	user "github.com/milletmart/milletmart-backend/internal/users"
	pkgauth "github.com/milletmart/milletmart-backend/pkg/auth"
	"github.com/milletmart/milletmart-backend/pkg/config"
	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
	"github.com/milletmart/milletmart-backend/pkg/security"
)

// sessionIssuer is the subset of the session manager the service needs.
type sessionIssuer interface {
	Create(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Service exposes the admin login, TOTP, and session lifecycle.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	VerifyOTP(ctx context.Context, username, password, code string) (*LoginResult, error)
	SetupOTP(ctx context.Context, userID uuid.UUID) (*OTPSetup, error)
	VerifySetup(ctx context.Context, userID uuid.UUID, secret, code string) error
	Logout(ctx context.Context, token string) error
	Identity(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// LoginResult is the outcome of a credential exchange. When OTPRequired is
// set no token has been issued yet and the client must call verify-otp.
type LoginResult struct {
	Token       string
	OTPRequired bool
	User        *models.User
}

// OTPSetup carries an uncommitted TOTP secret back to the client. The secret
// is only persisted by a later verify-setup call.
type OTPSetup struct {
	Secret string
	URL    string
}

type service struct {
	users    user.Repository
	sessions sessionIssuer
	issuer   string
}

// NewService constructs the admin auth service.
func NewService(users user.Repository, sessions sessionIssuer, cfg config.AdminConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &service{
		users:    users,
		sessions: sessions,
		issuer:   cfg.TOTPIssuer,
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	account, err := s.checkPassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if account.OTPEnabled {
		return &LoginResult{OTPRequired: true}, nil
	}
	return s.issueSession(ctx, account)
}

func (s *service) VerifyOTP(ctx context.Context, username, password, code string) (*LoginResult, error) {
	account, err := s.checkPassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if !account.OTPEnabled || account.OTPSecret == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "two-factor authentication is not enabled")
	}
	if !pkgauth.VerifyTOTP(*account.OTPSecret, code) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return s.issueSession(ctx, account)
}

func (s *service) SetupOTP(ctx context.Context, userID uuid.UUID) (*OTPSetup, error) {
	account, err := s.Identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, url, err := pkgauth.GenerateTOTPSecret(s.issuer, account.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate totp secret")
	}
	return &OTPSetup{Secret: secret, URL: url}, nil
}

func (s *service) VerifySetup(ctx context.Context, userID uuid.UUID, secret, code string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "secret is required")
	}
	if !pkgauth.VerifyTOTP(secret, code) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid code")
	}

	account, err := s.Identity(ctx, userID)
	if err != nil {
		return err
	}

	account.OTPSecret = &secret
	account.OTPEnabled = true
	if _, err := s.users.Update(ctx, account); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit totp secret")
	}
	return nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Identity(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

// checkPassword resolves the account and verifies the password. All failure
// modes collapse to the same unauthorized error so usernames cannot be
// probed.
func (s *service) checkPassword(ctx context.Context, username, password string) (*models.User, error) {
	account, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !account.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return account, nil
}

func (s *service) issueSession(ctx context.Context, account *models.User) (*LoginResult, error) {
	token, err := s.sessions.Create(ctx, account.ID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return &LoginResult{Token: token, User: account}, nil
}
