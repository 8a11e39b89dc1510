package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AgentRepository manages agent accounts.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Agent, error)
}

type agentRepository struct {
	db Querier
}

// NewAgentRepository constructs repository.
func NewAgentRepository(db Querier) AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `id, tenant_id, name, email, password_hash, role, status, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (tenant_id, name, email, password_hash, role, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		agent.TenantID,
		agent.Name,
		agent.Email,
		agent.PasswordHash,
		agent.Role,
		agent.Status,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *agentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE agents SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE tenant_id=$1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := scanAgent(rows, &agent); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := scanAgent(r.db.QueryRow(ctx, query, arg), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func scanAgent(row pgx.Row, agent *domain.Agent) error {
	return row.Scan(
		&agent.ID,
		&agent.TenantID,
		&agent.Name,
		&agent.Email,
		&agent.PasswordHash,
		&agent.Role,
		&agent.Status,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
}
