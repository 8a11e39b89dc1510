package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type stubTicketRepo struct {
	byID map[string]*domain.Ticket
}

func (r *stubTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.byID[ticket.ID] = ticket
	return nil
}

func (r *stubTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[ticket.ID] = ticket
	return nil
}

func (r *stubTicketRepo) UpdateStatus(_ context.Context, ticketID string, status domain.TicketStatus) error {
	ticket, ok := r.byID[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	return nil
}

func (r *stubTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *stubTicketRepo) FindByThreadIDs(context.Context, []string) (*domain.Ticket, error) {
	return nil, nil
}

func (r *stubTicketRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.byID {
		if ticket.TenantID == tenantID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

type stubMessageRepo struct {
	messages []domain.TicketMessage
	seq      int
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *stubMessageRepo) ExistsByEmailMessageID(context.Context, string) (bool, error) {
	return false, nil
}

func (r *stubMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var out []domain.TicketMessage
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type stubAttachmentRepo struct{}

func (stubAttachmentRepo) Create(context.Context, *domain.TicketAttachment) error { return nil }
func (stubAttachmentRepo) GetByID(context.Context, string) (*domain.TicketAttachment, error) {
	return nil, pgx.ErrNoRows
}
func (stubAttachmentRepo) TenantByID(context.Context, string) (string, error) {
	return "", pgx.ErrNoRows
}
func (stubAttachmentRepo) ListByMessage(context.Context, string) ([]domain.TicketAttachment, error) {
	return nil, nil
}

type stubContactRepo struct {
	byID map[string]*domain.Contact
}

func (r *stubContactRepo) Create(_ context.Context, contact *domain.Contact) error {
	contact.ID = fmt.Sprintf("contact-%d", len(r.byID)+1)
	r.byID[contact.ID] = contact
	return nil
}

func (r *stubContactRepo) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	contact, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return contact, nil
}

func (r *stubContactRepo) FindByEmail(context.Context, string) (*domain.Contact, error) {
	return nil, nil
}

func (r *stubContactRepo) FindByEmailInTenant(_ context.Context, email, tenantID string) (*domain.Contact, error) {
	for _, contact := range r.byID {
		if contact.Email == email && contact.TenantID == tenantID {
			return contact, nil
		}
	}
	return nil, nil
}

func (r *stubContactRepo) ListByTenant(context.Context, string, int, int) ([]domain.Contact, error) {
	return nil, nil
}

type stubCategoryRepo struct{}

func (stubCategoryRepo) Create(context.Context, *domain.Category) error { return nil }
func (stubCategoryRepo) GetByID(context.Context, string) (*domain.Category, error) {
	return nil, pgx.ErrNoRows
}
func (stubCategoryRepo) ListByTenant(context.Context, string) ([]domain.Category, error) {
	return nil, nil
}

func newServiceFixture() (*TicketService, *stubTicketRepo, *stubMessageRepo, *stubContactRepo) {
	tickets := &stubTicketRepo{byID: make(map[string]*domain.Ticket)}
	messages := &stubMessageRepo{}
	contacts := &stubContactRepo{byID: make(map[string]*domain.Contact)}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		MessageRepo:    messages,
		AttachmentRepo: stubAttachmentRepo{},
		ContactRepo:    contacts,
		CategoryRepo:   stubCategoryRepo{},
	})
	return svc, tickets, messages, contacts
}

func testAgent() *domain.Agent {
	return &domain.Agent{ID: "agent-1", TenantID: "tenant-1", Role: domain.AgentRoleAgent, Status: domain.AgentStatusActive}
}

func TestCreateTicketWebChannel(t *testing.T) {
	svc, tickets, messages, contacts := newServiceFixture()
	contacts.byID["contact-1"] = &domain.Contact{ID: "contact-1", TenantID: "tenant-1", Email: "jane@example.com"}

	ticket, err := svc.CreateTicket(context.Background(), testAgent(), TicketCreateInput{
		ContactID: "contact-1",
		Subject:   "Cannot log in",
		Body:      "Password reset loops forever.",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusNew || ticket.Priority != domain.TicketPriorityP3 {
		t.Errorf("defaults = %s/%s, want NEW/P3", ticket.Status, ticket.Priority)
	}
	if _, ok := tickets.byID[ticket.ID]; !ok {
		t.Error("ticket not persisted")
	}
	if len(messages.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages.messages))
	}
	msg := messages.messages[0]
	if msg.Channel != domain.ChannelWeb {
		t.Errorf("channel = %s, want web", msg.Channel)
	}
	if msg.ContactID == nil || *msg.ContactID != "contact-1" {
		t.Errorf("first message must be attributed to the contact, got %v", msg.ContactID)
	}
}

func TestCreateTicketRejectsForeignContact(t *testing.T) {
	svc, _, _, contacts := newServiceFixture()
	contacts.byID["contact-1"] = &domain.Contact{ID: "contact-1", TenantID: "tenant-2", Email: "jane@example.com"}

	_, err := svc.CreateTicket(context.Background(), testAgent(), TicketCreateInput{
		ContactID: "contact-1",
		Subject:   "s",
		Body:      "b",
	})
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	svc, tickets, _, _ := newServiceFixture()
	tickets.byID["t-1"] = &domain.Ticket{ID: "t-1", TenantID: "tenant-1", Status: domain.TicketStatusNew}

	_, err := svc.UpdateStatus(context.Background(), testAgent(), "t-1", domain.TicketStatusResolved, "")
	assertDomainCode(t, err, "CONFLICT")

	ticket, err := svc.UpdateStatus(context.Background(), testAgent(), "t-1", domain.TicketStatusInProgress, "picked up")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", ticket.Status)
	}

	ticket, err = svc.UpdateStatus(context.Background(), testAgent(), "t-1", domain.TicketStatusResolved, "done")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ticket.ResolvedAt == nil {
		t.Error("resolved_at not stamped")
	}
}

func TestUpdateStatusTenantIsolation(t *testing.T) {
	svc, tickets, _, _ := newServiceFixture()
	tickets.byID["t-1"] = &domain.Ticket{ID: "t-1", TenantID: "tenant-2", Status: domain.TicketStatusNew}

	_, err := svc.UpdateStatus(context.Background(), testAgent(), "t-1", domain.TicketStatusOpen, "")
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestAddAgentMessageInternalNote(t *testing.T) {
	svc, tickets, messages, _ := newServiceFixture()
	tickets.byID["t-1"] = &domain.Ticket{ID: "t-1", TenantID: "tenant-1", Status: domain.TicketStatusOpen}

	msg, err := svc.AddAgentMessage(context.Background(), testAgent(), "t-1", "internal context", true)
	if err != nil {
		t.Fatalf("AddAgentMessage: %v", err)
	}
	if !msg.IsInternal {
		t.Error("message should be internal")
	}
	if msg.AgentID == nil || *msg.AgentID != "agent-1" {
		t.Errorf("author = %v, want agent-1", msg.AgentID)
	}
	if len(messages.messages) != 1 {
		t.Errorf("messages = %d, want 1", len(messages.messages))
	}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Code != code {
		t.Errorf("code = %s, want %s", domainErr.Code, code)
	}
}
