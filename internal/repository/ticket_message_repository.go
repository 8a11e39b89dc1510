package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketMessageRepository manages ticket thread messages.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	ExistsByEmailMessageID(ctx context.Context, emailMessageID string) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	db Querier
}

// NewTicketMessageRepository builds repository.
func NewTicketMessageRepository(db Querier) TicketMessageRepository {
	return &ticketMessageRepository{db: db}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, contact_id, agent_id, body, is_internal, channel_source, email_message_id, email_headers)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		msg.TicketID,
		msg.ContactID,
		msg.AgentID,
		msg.Body,
		msg.IsInternal,
		msg.Channel,
		msg.EmailMessageID,
		msg.EmailHeaders,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// ExistsByEmailMessageID is the idempotency gate for email ingestion.
func (r *ticketMessageRepository) ExistsByEmailMessageID(ctx context.Context, emailMessageID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM ticket_messages WHERE email_message_id=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, emailMessageID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, contact_id, agent_id, body, is_internal, channel_source, email_message_id, email_headers, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.TicketMessage, error) {
	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.ContactID,
			&msg.AgentID,
			&msg.Body,
			&msg.IsInternal,
			&msg.Channel,
			&msg.EmailMessageID,
			&msg.EmailHeaders,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
