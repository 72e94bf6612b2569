package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/milletmart/milletmart-backend/pkg/db/models"
	pkgerrors "github.com/milletmart/milletmart-backend/pkg/errors"
)

// Service exposes contact form submission and the admin inbox.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Contact, error)
	List(ctx context.Context) ([]models.Contact, error)
}

// SubmitInput is the validated contact form payload.
type SubmitInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

type service struct {
	repo Repository
}

// NewService constructs the contact service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Contact, error) {
	contact := &models.Contact{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and message are required")
	}

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save contact submission")
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact submissions")
	}
	return rows, nil
}
