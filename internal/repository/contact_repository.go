package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ContactRepository encapsulates customer contact persistence.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	// FindByEmail searches across all tenants and returns the first match,
	// or (nil, nil) when the address is unknown.
	FindByEmail(ctx context.Context, email string) (*domain.Contact, error)
	// FindByEmailInTenant scopes the lookup to one tenant.
	FindByEmailInTenant(ctx context.Context, email, tenantID string) (*domain.Contact, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Contact, error)
}

type contactRepository struct {
	db Querier
}

// NewContactRepository constructs repository.
func NewContactRepository(db Querier) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, tenant_id, name, email, phone, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (tenant_id, name, email, phone)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		contact.TenantID,
		contact.Name,
		contact.Email,
		contact.Phone,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	var contact domain.Contact
	if err := scanContact(r.db.QueryRow(ctx, query, id), &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE email=$1 ORDER BY created_at ASC LIMIT 1`
	var contact domain.Contact
	if err := scanContact(r.db.QueryRow(ctx, query, email), &contact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByEmailInTenant(ctx context.Context, email, tenantID string) (*domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE email=$1 AND tenant_id=$2`
	var contact domain.Contact
	if err := scanContact(r.db.QueryRow(ctx, query, email, tenantID), &contact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + contactColumns + ` FROM contacts
        WHERE tenant_id=$1 ORDER BY name ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := scanContact(rows, &contact); err != nil {
			return nil, err
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}

func scanContact(row pgx.Row, contact *domain.Contact) error {
	return row.Scan(
		&contact.ID,
		&contact.TenantID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
}
