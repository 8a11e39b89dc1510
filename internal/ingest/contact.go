package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ContactResolver maps a sender address to a contact record. It never
// creates contacts: an unknown sender's tenant cannot be determined from
// the address alone, so such mail is unrouteable rather than guessed at.
type ContactResolver struct {
	contacts ContactStore
	logger   *zap.Logger
}

// NewContactResolver constructs the resolver.
func NewContactResolver(contacts ContactStore, logger *zap.Logger) *ContactResolver {
	return &ContactResolver{contacts: contacts, logger: logger}
}

// ResolveForNewTicket looks the sender up across all tenants. When the
// same address exists in two tenants the earliest contact wins, which is
// a documented limitation of address-only routing. Returns (nil, nil)
// for unknown senders.
func (r *ContactResolver) ResolveForNewTicket(ctx context.Context, email string) (*domain.Contact, error) {
	contact, err := r.contacts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		r.logger.Warn("email from unknown sender, cannot determine tenant",
			zap.String("email", email))
		return nil, nil
	}
	return contact, nil
}

// ResolveForTicket scopes the lookup to the ticket's tenant. A reply
// from an address with no contact in that tenant is from an unknown
// party and must not be attached to the ticket.
func (r *ContactResolver) ResolveForTicket(ctx context.Context, email string, ticket *domain.Ticket) (*domain.Contact, error) {
	contact, err := r.contacts.FindByEmailInTenant(ctx, email, ticket.TenantID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		r.logger.Warn("reply from unknown contact for existing ticket",
			zap.String("email", email),
			zap.String("ticket_id", ticket.ID))
		return nil, nil
	}
	return contact, nil
}
