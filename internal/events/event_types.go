package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketMessageAdded    EventType = "ticket_message_added"
)

// ActorType identifies who caused an event.
type ActorType string

const (
	ActorContact ActorType = "contact"
	ActorAgent   ActorType = "agent"
	ActorSystem  ActorType = "system"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      ActorType `json:"type"`
	ContactID *string   `json:"contact_id,omitempty"`
	AgentID   *string   `json:"agent_id,omitempty"`
}

// SystemActor is the actor for events raised by background ingestion.
func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}

// ContactActor builds an actor for a customer-initiated event.
func ContactActor(contactID string) Actor {
	return Actor{Type: ActorContact, ContactID: &contactID}
}

// AgentActor builds an actor for an agent-initiated event.
func AgentActor(agentID string) Actor {
	return Actor{Type: ActorAgent, AgentID: &agentID}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TenantID  string                `json:"tenant_id"`
	ContactID string                `json:"contact_id"`
	Subject   string                `json:"subject"`
	Priority  domain.TicketPriority `json:"priority"`
	Channel   domain.ChannelSource  `json:"channel"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID  string               `json:"message_id"`
	Channel    domain.ChannelSource `json:"channel"`
	IsInternal bool                 `json:"is_internal"`
}
