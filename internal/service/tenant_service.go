package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TenantService exposes read access to tenants. Provisioning happens out
// of band, so only admins list and inspect them.
type TenantService struct {
	tenants repository.TenantRepository
}

// NewTenantService builds the service.
func NewTenantService(tenants repository.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.tenants.List(ctx)
}

// Get fetches one tenant by id.
func (s *TenantService) Get(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tenant", nil)
		}
		return nil, err
	}
	return tenant, nil
}
