package controllers

import (
	"net/http"

	"github.com/milletmart/milletmart-backend/api/responses"
	"github.com/milletmart/milletmart-backend/api/validators"
	contactsvc "github.com/milletmart/milletmart-backend/internal/contacts"
	"github.com/milletmart/milletmart-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmitContact stores a contact form submission.
func SubmitContact(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contact, err := svc.Submit(r.Context(), contactsvc.SubmitInput{
			Name:    validators.SanitizeString(payload.Name, 200),
			Email:   validators.SanitizeString(payload.Email, 0),
			Phone:   validators.SanitizeString(payload.Phone, 30),
			Subject: validators.SanitizeString(payload.Subject, 300),
			Message: validators.SanitizeString(payload.Message, 5000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contact)
	}
}

// ListContacts returns the admin inbox, newest first.
func ListContacts(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contacts)
	}
}
