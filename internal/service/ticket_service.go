package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows on the web/API path. Email
// ingestion has its own engine; both converge on the same repositories.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	attachments repository.AttachmentRepository
	contacts    repository.ContactRepository
	categories  repository.CategoryRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.TicketMessageRepository
	AttachmentRepo repository.AttachmentRepository
	ContactRepo    repository.ContactRepository
	CategoryRepo   repository.CategoryRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes a web-channel ticket creation payload.
type TicketCreateInput struct {
	ContactID  string
	CategoryID *string
	Subject    string
	Body       string
	Priority   domain.TicketPriority
	Type       domain.TicketType
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		attachments: deps.AttachmentRepo,
		contacts:    deps.ContactRepo,
		categories:  deps.CategoryRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket opens a ticket on behalf of a contact via the web channel.
// The first message is attributed to the contact, matching how tickets
// created from email carry the sender's words.
func (s *TicketService) CreateTicket(ctx context.Context, agent *domain.Agent, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}

	contact, err := s.contacts.GetByID(ctx, input.ContactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	if contact.TenantID != agent.TenantID {
		return nil, apperrors.NewForbidden("contact belongs to another tenant")
	}

	if input.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("category", nil)
			}
			return nil, err
		}
		if category.TenantID != agent.TenantID {
			return nil, apperrors.NewForbidden("category belongs to another tenant")
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityP3
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	ticketType := input.Type
	if ticketType == "" {
		ticketType = domain.TicketTypeIncidence
	}

	ticket := &domain.Ticket{
		ID:         uuid.NewString(),
		TenantID:   agent.TenantID,
		ContactID:  contact.ID,
		CategoryID: input.CategoryID,
		Subject:    subject,
		Status:     domain.TicketStatusNew,
		Priority:   priority,
		Type:       ticketType,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	contactID := contact.ID
	msg := &domain.TicketMessage{
		TicketID:  ticket.ID,
		ContactID: &contactID,
		Body:      body,
		Channel:   domain.ChannelWeb,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.AgentActor(agent.ID),
		Payload: events.TicketCreatedPayload{
			TenantID:  ticket.TenantID,
			ContactID: ticket.ContactID,
			Subject:   ticket.Subject,
			Priority:  ticket.Priority,
			Channel:   domain.ChannelWeb,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets for the agent's tenant.
func (s *TicketService) ListTickets(ctx context.Context, agent *domain.Agent, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListByTenant(ctx, agent.TenantID, limit, offset)
}

// GetTicketDetail fetches a ticket with its full conversation.
func (s *TicketService) GetTicketDetail(ctx context.Context, agent *domain.Agent, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.ticketForAgent(ctx, agent, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messagesWithAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// AddAgentMessage appends an agent reply or internal note.
func (s *TicketService) AddAgentMessage(ctx context.Context, agent *domain.Agent, ticketID, body string, isInternal bool) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}
	ticket, err := s.ticketForAgent(ctx, agent, ticketID)
	if err != nil {
		return nil, err
	}

	agentID := agent.ID
	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		AgentID:    &agentID,
		Body:       body,
		IsInternal: isInternal,
		Channel:    domain.ChannelWeb,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    events.AgentActor(agent.ID),
		Payload: events.TicketMessageAddedPayload{
			MessageID:  msg.ID,
			Channel:    msg.Channel,
			IsInternal: msg.IsInternal,
		},
	})
	return msg, nil
}

// UpdateStatus moves a ticket along the agent transition table.
func (s *TicketService) UpdateStatus(ctx context.Context, agent *domain.Agent, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.ticketForAgent(ctx, agent, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	now := time.Now()
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	default:
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.AgentActor(agent.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, agent *domain.Agent, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.ticketForAgent(ctx, agent, ticketID)
	if err != nil {
		return nil, err
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    events.AgentActor(agent.ID),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// GetAttachment returns attachment metadata after a tenant check.
func (s *TicketService) GetAttachment(ctx context.Context, agent *domain.Agent, attachmentID string) (*domain.TicketAttachment, error) {
	tenantID, err := s.attachments.TenantByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attachment", nil)
		}
		return nil, err
	}
	if tenantID != agent.TenantID {
		return nil, apperrors.NewForbidden("attachment belongs to another tenant")
	}
	return s.attachments.GetByID(ctx, attachmentID)
}

func (s *TicketService) ticketForAgent(ctx context.Context, agent *domain.Agent, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if ticket.TenantID != agent.TenantID {
		return nil, apperrors.NewForbidden("ticket belongs to another tenant")
	}
	return ticket, nil
}

func (s *TicketService) messagesWithAttachments(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		attachments, err := s.attachments.ListByMessage(ctx, msgs[i].ID)
		if err != nil {
			return nil, err
		}
		msgs[i].Attachments = attachments
	}
	return msgs, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
