package ingest

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mail"
	"github.com/spec-kit/helpdesk/internal/storage"
)

// Outcome classifies the processing result for one message.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeAppended    Outcome = "appended"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeUnrouteable Outcome = "unrouteable"
)

// Result reports what the engine did with one message.
type Result struct {
	Outcome  Outcome
	TicketID string
}

// Engine orchestrates per-message ingestion: dedup gate, thread
// resolution, contact resolution, then a transactional create-or-append.
type Engine struct {
	tickets    TicketStore
	contacts   *ContactResolver
	threads    *ThreadResolver
	objects    storage.ObjectStore
	dedup      DedupFilter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EngineDependencies bundles collaborators for the engine.
type EngineDependencies struct {
	Tickets    TicketStore
	Contacts   ContactStore
	Objects    storage.ObjectStore
	Dedup      DedupFilter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewEngine constructs the engine. Dedup and Dispatcher are optional.
func NewEngine(deps EngineDependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tickets:    deps.Tickets,
		contacts:   NewContactResolver(deps.Contacts, logger),
		threads:    NewThreadResolver(deps.Tickets),
		objects:    deps.Objects,
		dedup:      deps.Dedup,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Process runs the per-message state machine. An error return means the
// message must stay unseen and be retried on the next poll; every
// non-error Result is final for this message.
func (e *Engine) Process(ctx context.Context, msg *NormalizedMessage) (Result, error) {
	duplicate, err := e.alreadyProcessed(ctx, msg.MessageID)
	if err != nil {
		return Result{}, err
	}
	if duplicate {
		e.logger.Info("email already processed", zap.String("message_id", msg.MessageID))
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	ticket, err := e.threads.Resolve(ctx, msg)
	if err != nil {
		return Result{}, err
	}

	if ticket != nil {
		return e.appendToTicket(ctx, ticket, msg)
	}
	return e.createTicket(ctx, msg)
}

// alreadyProcessed is the at-most-once gate: the ticket_messages table
// is authoritative, Redis only short-circuits the common rerun case.
// Messages without a message-id cannot be deduplicated.
func (e *Engine) alreadyProcessed(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	if e.dedup != nil {
		if seen, err := e.dedup.Seen(ctx, messageID); err == nil && seen {
			return true, nil
		}
	}
	return e.tickets.MessageExists(ctx, messageID)
}

func (e *Engine) appendToTicket(ctx context.Context, ticket *domain.Ticket, msg *NormalizedMessage) (Result, error) {
	contact, err := e.contacts.ResolveForTicket(ctx, msg.SenderEmail, ticket)
	if err != nil {
		return Result{}, err
	}
	if contact == nil {
		return Result{Outcome: OutcomeUnrouteable}, nil
	}

	ticketMsg := e.buildMessage(ticket.ID, contact.ID, msg)
	err = e.tickets.WithinTx(ctx, func(ts TicketStore) error {
		if err := ts.CreateMessage(ctx, ticketMsg); err != nil {
			return err
		}
		// Customer replies reopen resolved work. Explicit rule, not a
		// side effect of the generic update path.
		if domain.ReopensOnReply(ticket.Status) {
			return ts.UpdateTicketStatus(ctx, ticket.ID, domain.TicketStatusOpen)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	e.storeAttachments(ctx, ticket.ID, ticketMsg.ID, msg.Attachments)
	e.finishMessage(ctx, msg.MessageID)
	e.publish(events.EventTicketMessageAdded, ticket.ID, events.TicketMessageAddedPayload{
		MessageID: ticketMsg.ID,
		Channel:   domain.ChannelEmail,
	})

	e.logger.Info("added message to existing ticket",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_message_id", ticketMsg.ID))
	return Result{Outcome: OutcomeAppended, TicketID: ticket.ID}, nil
}

func (e *Engine) createTicket(ctx context.Context, msg *NormalizedMessage) (Result, error) {
	contact, err := e.contacts.ResolveForNewTicket(ctx, msg.SenderEmail)
	if err != nil {
		return Result{}, err
	}
	if contact == nil {
		return Result{Outcome: OutcomeUnrouteable}, nil
	}

	subject := msg.Subject
	if subject == "" {
		subject = "No Subject"
	}

	ticket := &domain.Ticket{
		ID:        uuid.NewString(),
		TenantID:  contact.TenantID,
		ContactID: contact.ID,
		Subject:   subject,
		Status:    domain.TicketStatusNew,
		Priority:  domain.TicketPriorityP3,
		Type:      domain.TicketTypeIncidence,
	}
	if msg.MessageID != "" {
		id := msg.MessageID
		ticket.EmailMessageID = &id
		// The thread anchor for future replies.
		ticket.EmailThreadID = &id
	}

	ticketMsg := e.buildMessage(ticket.ID, contact.ID, msg)
	err = e.tickets.WithinTx(ctx, func(ts TicketStore) error {
		if err := ts.CreateTicket(ctx, ticket); err != nil {
			return err
		}
		return ts.CreateMessage(ctx, ticketMsg)
	})
	if err != nil {
		return Result{}, err
	}

	e.storeAttachments(ctx, ticket.ID, ticketMsg.ID, msg.Attachments)
	e.finishMessage(ctx, msg.MessageID)
	e.publish(events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		TenantID:  ticket.TenantID,
		ContactID: ticket.ContactID,
		Subject:   ticket.Subject,
		Priority:  ticket.Priority,
		Channel:   domain.ChannelEmail,
	})

	e.logger.Info("created ticket from email",
		zap.String("ticket_id", ticket.ID),
		zap.String("contact_email", msg.SenderEmail))
	return Result{Outcome: OutcomeCreated, TicketID: ticket.ID}, nil
}

func (e *Engine) buildMessage(ticketID, contactID string, msg *NormalizedMessage) *domain.TicketMessage {
	ticketMsg := &domain.TicketMessage{
		TicketID:   ticketID,
		ContactID:  &contactID,
		Body:       msg.Body,
		IsInternal: false,
		Channel:    domain.ChannelEmail,
	}
	if msg.MessageID != "" {
		id := msg.MessageID
		ticketMsg.EmailMessageID = &id
	}
	if msg.RawHeaders != "" {
		headers := msg.RawHeaders
		ticketMsg.EmailHeaders = &headers
	}
	return ticketMsg
}

// storeAttachments is best-effort: a failed attachment is logged and the
// rest continue. The message body is authoritative.
func (e *Engine) storeAttachments(ctx context.Context, ticketID, messageID string, attachments []mail.AttachmentData) {
	for _, att := range attachments {
		name := att.Name
		if name == "" {
			name = "attachment"
		}
		storedName := uuid.NewString() + "_" + strings.ReplaceAll(name, "/", "_")
		key := path.Join("attachments", ticketID, storedName)

		if err := e.objects.Put(ctx, key, att.Data, att.MimeType); err != nil {
			e.logger.Error("storing attachment failed",
				zap.String("ticket_id", ticketID),
				zap.String("name", name),
				zap.Error(err))
			continue
		}

		record := &domain.TicketAttachment{
			TicketMessageID: messageID,
			Name:            name,
			Path:            key,
			MimeType:        att.MimeType,
			SizeBytes:       int64(len(att.Data)),
		}
		if err := e.tickets.CreateAttachment(ctx, record); err != nil {
			e.logger.Error("recording attachment failed",
				zap.String("ticket_id", ticketID),
				zap.String("name", name),
				zap.Error(err))
			continue
		}
		e.logger.Info("processed attachment",
			zap.String("ticket_id", ticketID),
			zap.String("name", name))
	}
}

func (e *Engine) finishMessage(ctx context.Context, messageID string) {
	if e.dedup == nil || messageID == "" {
		return
	}
	if err := e.dedup.Mark(ctx, messageID); err != nil {
		e.logger.Warn("dedup mark failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (e *Engine) publish(eventType events.EventType, ticketID string, payload any) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.SystemActor(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
