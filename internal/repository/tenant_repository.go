package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TenantRepository reads tenant records. Tenants are provisioned out of
// band; the service only consumes them.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}

type tenantRepository struct {
	db Querier
}

// NewTenantRepository constructs repository.
func NewTenantRepository(db Querier) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	const query = `SELECT id, name, domain, config, created_at, updated_at FROM tenants WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	const query = `SELECT id, name, domain, config, created_at, updated_at FROM tenants ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tenant
	for rows.Next() {
		var tenant domain.Tenant
		if err := rows.Scan(
			&tenant.ID,
			&tenant.Name,
			&tenant.Domain,
			&tenant.Config,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tenant)
	}
	return result, rows.Err()
}

func (r *tenantRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Domain,
		&tenant.Config,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tenant, nil
}
