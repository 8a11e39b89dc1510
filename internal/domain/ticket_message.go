package domain

import "time"

// ChannelSource records where a message entered the system.
type ChannelSource string

const (
	ChannelWeb   ChannelSource = "web"
	ChannelEmail ChannelSource = "email"
	ChannelChat  ChannelSource = "chat"
)

// TicketMessage is one unit of conversation inside a ticket. Exactly one
// of ContactID or AgentID is set. Email-sourced messages carry the
// specific email's message-id (used for dedup) and its raw headers.
type TicketMessage struct {
	ID             string
	TicketID       string
	ContactID      *string
	AgentID        *string
	Body           string
	IsInternal     bool
	Channel        ChannelSource
	EmailMessageID *string
	EmailHeaders   *string
	Attachments    []TicketAttachment
	CreatedAt      time.Time
}

// TicketAttachment stores metadata for a file attached to a message.
// Path must resolve inside the attachment storage root.
type TicketAttachment struct {
	ID              string
	TicketMessageID string
	Name            string
	Path            string
	MimeType        string
	SizeBytes       int64
	CreatedAt       time.Time
}
