package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.TicketAttachment) error
	GetByID(ctx context.Context, id string) (*domain.TicketAttachment, error)
	TenantByID(ctx context.Context, id string) (string, error)
	ListByMessage(ctx context.Context, messageID string) ([]domain.TicketAttachment, error)
}

type attachmentRepository struct {
	db Querier
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db Querier) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.TicketAttachment) error {
	const query = `
        INSERT INTO ticket_attachments (ticket_message_id, name, path, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		attachment.TicketMessageID,
		attachment.Name,
		attachment.Path,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.TicketAttachment, error) {
	const query = `
        SELECT id, ticket_message_id, name, path, mime_type, size_bytes, created_at
        FROM ticket_attachments WHERE id=$1`
	var attachment domain.TicketAttachment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.TicketMessageID,
		&attachment.Name,
		&attachment.Path,
		&attachment.MimeType,
		&attachment.SizeBytes,
		&attachment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// TenantByID resolves the owning tenant through the message and ticket.
func (r *attachmentRepository) TenantByID(ctx context.Context, id string) (string, error) {
	const query = `
        SELECT t.tenant_id FROM ticket_attachments a
        JOIN ticket_messages m ON m.id = a.ticket_message_id
        JOIN tickets t ON t.id = m.ticket_id
        WHERE a.id=$1`
	var tenantID string
	if err := r.db.QueryRow(ctx, query, id).Scan(&tenantID); err != nil {
		return "", err
	}
	return tenantID, nil
}

func (r *attachmentRepository) ListByMessage(ctx context.Context, messageID string) ([]domain.TicketAttachment, error) {
	const query = `
        SELECT id, ticket_message_id, name, path, mime_type, size_bytes, created_at
        FROM ticket_attachments WHERE ticket_message_id=$1`
	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAttachment
	for rows.Next() {
		var attachment domain.TicketAttachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketMessageID,
			&attachment.Name,
			&attachment.Path,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
