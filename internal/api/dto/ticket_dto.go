package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ContactID  string                `json:"contact_id"`
	CategoryID *string               `json:"category_id"`
	Subject    string                `json:"subject"`
	Body       string                `json:"body"`
	Priority   domain.TicketPriority `json:"priority"`
	Type       domain.TicketType     `json:"type"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         string                `json:"id"`
	TenantID   string                `json:"tenant_id"`
	ContactID  string                `json:"contact_id"`
	AssigneeID *string               `json:"assignee_id"`
	CategoryID *string               `json:"category_id"`
	Subject    string                `json:"subject"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	Type       domain.TicketType     `json:"type"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with the conversation.
type TicketDetailResponse struct {
	TicketSummary
	ResolvedAt *time.Time              `json:"resolved_at"`
	ClosedAt   *time.Time              `json:"closed_at"`
	Messages   []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID          string               `json:"id"`
	ContactID   *string              `json:"contact_id"`
	AgentID     *string              `json:"agent_id"`
	Body        string               `json:"body"`
	IsInternal  bool                 `json:"is_internal"`
	Channel     domain.ChannelSource `json:"channel"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// CreateMessageRequest payload for agent replies.
type CreateMessageRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}
