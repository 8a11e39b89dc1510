package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "NEW"
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusPendingCustomer TicketStatus = "PENDING_CUSTOMER"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency levels. P3 is the default for
// email-sourced tickets where urgency is unknown.
type TicketPriority string

const (
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
	TicketPriorityP3 TicketPriority = "P3"
	TicketPriorityP4 TicketPriority = "P4"
)

// TicketType categorizes the nature of the request.
type TicketType string

const (
	TicketTypeIncidence TicketType = "INCIDENCE"
	TicketTypeRequest   TicketType = "REQUEST"
	TicketTypeQuestion  TicketType = "QUESTION"
)

// Ticket is the unit of support work. EmailMessageID holds the
// message-id of the first email that created it; EmailThreadID is the
// thread anchor used to match future replies.
type Ticket struct {
	ID             string
	TenantID       string
	ContactID      string
	AssigneeID     *string
	CategoryID     *string
	Subject        string
	Status         TicketStatus
	Priority       TicketPriority
	Type           TicketType
	EmailMessageID *string
	EmailThreadID  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}

var agentTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:             {TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed},
	TicketStatusOpen:            {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress:      {TicketStatusPendingCustomer, TicketStatusResolved},
	TicketStatusPendingCustomer: {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:        {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:          {},
}

// CanTransition reports whether an agent may move a ticket between the
// given statuses. Customer replies reopening resolved work follow
// ReopensOnReply instead.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range agentTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ReopensOnReply reports whether a customer reply must move the ticket
// back to OPEN. Only resolved or closed work reopens; active tickets
// keep their current status.
func ReopensOnReply(current TicketStatus) bool {
	return current == TicketStatusClosed || current == TicketStatusResolved
}

// ValidStatus reports whether the value is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusPendingCustomer, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityP1, TicketPriorityP2, TicketPriorityP3, TicketPriorityP4:
		return true
	}
	return false
}
