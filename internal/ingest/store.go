package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// TicketStore is the persistence surface the ingestion engine writes
// through. WithinTx runs fn against a store bound to one transaction so
// a mid-sequence failure leaves no ticket without its first message.
type TicketStore interface {
	WithinTx(ctx context.Context, fn func(TicketStore) error) error
	FindTicketByThreadIDs(ctx context.Context, ids []string) (*domain.Ticket, error)
	MessageExists(ctx context.Context, emailMessageID string) (bool, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket) error
	UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error
	CreateMessage(ctx context.Context, msg *domain.TicketMessage) error
	CreateAttachment(ctx context.Context, attachment *domain.TicketAttachment) error
}

// ContactStore resolves sender addresses to contact records.
type ContactStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Contact, error)
	FindByEmailInTenant(ctx context.Context, email, tenantID string) (*domain.Contact, error)
}

type pgTicketStore struct {
	pool        *pgxpool.Pool
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	attachments repository.AttachmentRepository
	inTx        bool
}

// NewTicketStore builds the pgx-backed ticket store for ingestion.
func NewTicketStore(pool *pgxpool.Pool) TicketStore {
	return &pgTicketStore{
		pool:        pool,
		tickets:     repository.NewTicketRepository(pool),
		messages:    repository.NewTicketMessageRepository(pool),
		attachments: repository.NewAttachmentRepository(pool),
	}
}

func (s *pgTicketStore) WithinTx(ctx context.Context, fn func(TicketStore) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := &pgTicketStore{
		pool:        s.pool,
		tickets:     repository.NewTicketRepository(tx),
		messages:    repository.NewTicketMessageRepository(tx),
		attachments: repository.NewAttachmentRepository(tx),
		inTx:        true,
	}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *pgTicketStore) FindTicketByThreadIDs(ctx context.Context, ids []string) (*domain.Ticket, error) {
	return s.tickets.FindByThreadIDs(ctx, ids)
}

func (s *pgTicketStore) MessageExists(ctx context.Context, emailMessageID string) (bool, error) {
	return s.messages.ExistsByEmailMessageID(ctx, emailMessageID)
}

func (s *pgTicketStore) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.tickets.Create(ctx, ticket)
}

func (s *pgTicketStore) UpdateTicketStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	return s.tickets.UpdateStatus(ctx, ticketID, status)
}

func (s *pgTicketStore) CreateMessage(ctx context.Context, msg *domain.TicketMessage) error {
	return s.messages.Create(ctx, msg)
}

func (s *pgTicketStore) CreateAttachment(ctx context.Context, attachment *domain.TicketAttachment) error {
	return s.attachments.Create(ctx, attachment)
}

type pgContactStore struct {
	contacts repository.ContactRepository
}

// NewContactStore builds the pgx-backed contact store for ingestion.
func NewContactStore(pool *pgxpool.Pool) ContactStore {
	return &pgContactStore{contacts: repository.NewContactRepository(pool)}
}

func (s *pgContactStore) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	return s.contacts.FindByEmail(ctx, email)
}

func (s *pgContactStore) FindByEmailInTenant(ctx context.Context, email, tenantID string) (*domain.Contact, error) {
	return s.contacts.FindByEmailInTenant(ctx, email, tenantID)
}
