package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ContactService manages customer contacts within a tenant.
type ContactService struct {
	contacts repository.ContactRepository
}

// NewContactService builds the service.
func NewContactService(contacts repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// ContactCreateInput describes contact creation payload.
type ContactCreateInput struct {
	Name  string
	Email string
	Phone *string
}

// Create registers a contact in the agent's tenant. The email must be
// unique within the tenant; future inbound mail from it routes here.
func (s *ContactService) Create(ctx context.Context, agent *domain.Agent, input ContactCreateInput) (*domain.Contact, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"email": input.Email})
	}

	existing, err := s.contacts.FindByEmailInTenant(ctx, email, agent.TenantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("contact email already exists", map[string]any{"email": email})
	}

	contact := &domain.Contact{
		TenantID: agent.TenantID,
		Name:     name,
		Email:    email,
		Phone:    input.Phone,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Get fetches a contact enforcing tenant isolation.
func (s *ContactService) Get(ctx context.Context, agent *domain.Agent, contactID string) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	if contact.TenantID != agent.TenantID {
		return nil, apperrors.NewForbidden("contact belongs to another tenant")
	}
	return contact, nil
}

// List returns contacts for the agent's tenant.
func (s *ContactService) List(ctx context.Context, agent *domain.Agent, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.ListByTenant(ctx, agent.TenantID, limit, offset)
}
