package ingest

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ThreadResolver decides whether an inbound message belongs to an
// existing ticket or starts a new one.
type ThreadResolver struct {
	tickets TicketStore
}

// NewThreadResolver constructs the resolver.
func NewThreadResolver(tickets TicketStore) *ThreadResolver {
	return &ThreadResolver{tickets: tickets}
}

// Resolve walks the message's reference ids in header order and returns
// the first ticket whose originating message-id or thread anchor matches
// any of them. Returns (nil, nil) when the message has no references or
// none match.
func (r *ThreadResolver) Resolve(ctx context.Context, msg *NormalizedMessage) (*domain.Ticket, error) {
	if len(msg.ReferenceIDs) == 0 {
		return nil, nil
	}
	return r.tickets.FindTicketByThreadIDs(ctx, msg.ReferenceIDs)
}
