package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TenantsHandler exposes admin-only tenant endpoints.
type TenantsHandler struct {
	service *service.TenantService
}

// NewTenantsHandler constructs handler.
func NewTenantsHandler(tenantService *service.TenantService) *TenantsHandler {
	return &TenantsHandler{service: tenantService}
}

// ListTenants GET /tenants.
func (h *TenantsHandler) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TenantResponse, 0, len(tenants))
	for i := range tenants {
		items = append(items, tenantResponse(&tenants[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTenant GET /tenants/:id.
func (h *TenantsHandler) GetTenant(c *fiber.Ctx) error {
	tenant, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tenantResponse(tenant)})
}

func tenantResponse(tenant *domain.Tenant) dto.TenantResponse {
	return dto.TenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Domain:    tenant.Domain,
		Config:    tenant.Config,
		CreatedAt: tenant.CreatedAt,
	}
}
