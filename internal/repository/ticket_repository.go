package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByThreadIDs(ctx context.Context, ids []string) (*domain.Ticket, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, tenant_id, contact_id, assignee_id, category_id, subject,
               status, priority, type, email_message_id, email_thread_id,
               created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, tenant_id, contact_id, assignee_id, category_id, subject, status, priority, type, email_message_id, email_thread_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ID,
		ticket.TenantID,
		ticket.ContactID,
		ticket.AssigneeID,
		ticket.CategoryID,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.EmailMessageID,
		ticket.EmailThreadID,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assignee_id=$1, category_id=$2, subject=$3, status=$4,
            priority=$5, type=$6, resolved_at=$7, closed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		ticket.AssigneeID,
		ticket.CategoryID,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, status, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// FindByThreadIDs returns the first ticket whose originating message-id or
// thread anchor matches any of the ids, preserving header order: the first
// id with a match wins. Returns (nil, nil) when nothing matches.
func (r *ticketRepository) FindByThreadIDs(ctx context.Context, ids []string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE email_message_id=$1 OR email_thread_id=$1 LIMIT 1`
	for _, id := range ids {
		if id == "" {
			continue
		}
		ticket, err := r.fetchSingle(ctx, query, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, err
		}
		return ticket, nil
	}
	return nil, nil
}

func (r *ticketRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE tenant_id=$1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.ContactID,
		&ticket.AssigneeID,
		&ticket.CategoryID,
		&ticket.Subject,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Type,
		&ticket.EmailMessageID,
		&ticket.EmailThreadID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
