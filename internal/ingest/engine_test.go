package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/mail"
	"github.com/spec-kit/helpdesk/internal/storage"
)

type fakeTicketStore struct {
	tickets     []domain.Ticket
	messages    []domain.TicketMessage
	attachments []domain.TicketAttachment
	statusByID  map[string]domain.TicketStatus
	existingMsg map[string]bool

	msgSeq      int
	existsCalls int

	failCreateTicket     bool
	failCreateMessage    bool
	failCreateAttachment bool
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{
		statusByID:  make(map[string]domain.TicketStatus),
		existingMsg: make(map[string]bool),
	}
}

func (s *fakeTicketStore) seedTicket(t domain.Ticket) {
	s.tickets = append(s.tickets, t)
	s.statusByID[t.ID] = t.Status
}

// WithinTx simulates transactional behavior: a failing fn leaves the
// store as it was before the call.
func (s *fakeTicketStore) WithinTx(ctx context.Context, fn func(TicketStore) error) error {
	nTickets, nMessages, nAttachments := len(s.tickets), len(s.messages), len(s.attachments)
	statusSnapshot := make(map[string]domain.TicketStatus, len(s.statusByID))
	for k, v := range s.statusByID {
		statusSnapshot[k] = v
	}

	if err := fn(s); err != nil {
		s.tickets = s.tickets[:nTickets]
		s.messages = s.messages[:nMessages]
		s.attachments = s.attachments[:nAttachments]
		s.statusByID = statusSnapshot
		return err
	}
	return nil
}

func (s *fakeTicketStore) FindTicketByThreadIDs(_ context.Context, ids []string) (*domain.Ticket, error) {
	for _, id := range ids {
		for i := range s.tickets {
			ticket := s.tickets[i]
			if (ticket.EmailMessageID != nil && *ticket.EmailMessageID == id) ||
				(ticket.EmailThreadID != nil && *ticket.EmailThreadID == id) {
				found := ticket
				found.Status = s.statusByID[ticket.ID]
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (s *fakeTicketStore) MessageExists(_ context.Context, emailMessageID string) (bool, error) {
	s.existsCalls++
	return s.existingMsg[emailMessageID], nil
}

func (s *fakeTicketStore) CreateTicket(_ context.Context, ticket *domain.Ticket) error {
	if s.failCreateTicket {
		return errors.New("insert ticket failed")
	}
	s.tickets = append(s.tickets, *ticket)
	s.statusByID[ticket.ID] = ticket.Status
	return nil
}

func (s *fakeTicketStore) UpdateTicketStatus(_ context.Context, ticketID string, status domain.TicketStatus) error {
	s.statusByID[ticketID] = status
	return nil
}

func (s *fakeTicketStore) CreateMessage(_ context.Context, msg *domain.TicketMessage) error {
	if s.failCreateMessage {
		return errors.New("insert message failed")
	}
	s.msgSeq++
	msg.ID = fmt.Sprintf("msg-%d", s.msgSeq)
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeTicketStore) CreateAttachment(_ context.Context, attachment *domain.TicketAttachment) error {
	if s.failCreateAttachment {
		return errors.New("insert attachment failed")
	}
	s.attachments = append(s.attachments, *attachment)
	return nil
}

type fakeContactStore struct {
	contacts []domain.Contact
}

func (s *fakeContactStore) FindByEmail(_ context.Context, email string) (*domain.Contact, error) {
	for i := range s.contacts {
		if s.contacts[i].Email == email {
			return &s.contacts[i], nil
		}
	}
	return nil, nil
}

func (s *fakeContactStore) FindByEmailInTenant(_ context.Context, email, tenantID string) (*domain.Contact, error) {
	for i := range s.contacts {
		if s.contacts[i].Email == email && s.contacts[i].TenantID == tenantID {
			return &s.contacts[i], nil
		}
	}
	return nil, nil
}

type fakeObjectStore struct {
	objects    map[string][]byte
	failSubstr string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if s.failSubstr != "" && strings.Contains(key, s.failSubstr) {
		return errors.New("object write failed")
	}
	s.objects[key] = data
	return nil
}

func (s *fakeObjectStore) Get(_ context.Context, key string) ([]byte, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return data, "application/octet-stream", nil
}

var _ storage.ObjectStore = (*fakeObjectStore)(nil)

type fakeDedup struct {
	seen   map[string]bool
	marked []string
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{seen: make(map[string]bool)}
}

func (f *fakeDedup) Seen(_ context.Context, messageID string) (bool, error) {
	return f.seen[messageID], nil
}

func (f *fakeDedup) Mark(_ context.Context, messageID string) error {
	f.marked = append(f.marked, messageID)
	return nil
}

type engineFixture struct {
	store   *fakeTicketStore
	contact *fakeContactStore
	objects *fakeObjectStore
	dedup   *fakeDedup
	engine  *Engine
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		store:   newFakeTicketStore(),
		contact: &fakeContactStore{},
		objects: newFakeObjectStore(),
		dedup:   newFakeDedup(),
	}
	f.engine = NewEngine(EngineDependencies{
		Tickets:  f.store,
		Contacts: f.contact,
		Objects:  f.objects,
		Dedup:    f.dedup,
		Logger:   zap.NewNop(),
	})
	return f
}

func (f *engineFixture) knownContact() domain.Contact {
	contact := domain.Contact{ID: "contact-1", TenantID: "tenant-1", Name: "Jane Doe", Email: "jane@example.com"}
	f.contact.contacts = append(f.contact.contacts, contact)
	return contact
}

func newMessage() *NormalizedMessage {
	return &NormalizedMessage{
		UID:         101,
		SenderEmail: "jane@example.com",
		SenderName:  "Jane Doe",
		Subject:     "Printer on fire",
		Body:        "It is definitely on fire.",
		MessageID:   "<orig-1@example.com>",
		RawHeaders:  "Message-ID: <orig-1@example.com>",
	}
}

func TestEngineCreatesTicketWithDefaults(t *testing.T) {
	f := newEngineFixture()
	contact := f.knownContact()

	result, err := f.engine.Process(context.Background(), newMessage())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeCreated)
	}
	if len(f.store.tickets) != 1 {
		t.Fatalf("tickets = %d, want 1", len(f.store.tickets))
	}

	ticket := f.store.tickets[0]
	if ticket.TenantID != contact.TenantID || ticket.ContactID != contact.ID {
		t.Errorf("ticket routed to tenant=%s contact=%s", ticket.TenantID, ticket.ContactID)
	}
	if ticket.Status != domain.TicketStatusNew {
		t.Errorf("status = %s, want NEW", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityP3 {
		t.Errorf("priority = %s, want P3", ticket.Priority)
	}
	if ticket.Type != domain.TicketTypeIncidence {
		t.Errorf("type = %s, want INCIDENCE", ticket.Type)
	}
	if ticket.EmailMessageID == nil || *ticket.EmailMessageID != "<orig-1@example.com>" {
		t.Errorf("email_message_id not recorded: %v", ticket.EmailMessageID)
	}
	if ticket.EmailThreadID == nil || *ticket.EmailThreadID != "<orig-1@example.com>" {
		t.Errorf("email_thread_id not anchored: %v", ticket.EmailThreadID)
	}

	if len(f.store.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(f.store.messages))
	}
	msg := f.store.messages[0]
	if msg.TicketID != ticket.ID {
		t.Errorf("message ticket = %s, want %s", msg.TicketID, ticket.ID)
	}
	if msg.Channel != domain.ChannelEmail {
		t.Errorf("channel = %s, want email", msg.Channel)
	}
	if msg.ContactID == nil || *msg.ContactID != contact.ID {
		t.Errorf("message contact = %v, want %s", msg.ContactID, contact.ID)
	}

	if len(f.dedup.marked) != 1 || f.dedup.marked[0] != "<orig-1@example.com>" {
		t.Errorf("dedup marks = %v, want the processed message-id", f.dedup.marked)
	}
}

func TestEngineSubjectFallback(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()

	msg := newMessage()
	msg.Subject = ""
	if _, err := f.engine.Process(context.Background(), msg); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := f.store.tickets[0].Subject; got != "No Subject" {
		t.Errorf("subject = %q, want %q", got, "No Subject")
	}
}

func TestEngineDuplicateSkipsAllWrites(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()
	f.store.existingMsg["<orig-1@example.com>"] = true

	result, err := f.engine.Process(context.Background(), newMessage())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeDuplicate)
	}
	if len(f.store.tickets) != 0 || len(f.store.messages) != 0 {
		t.Errorf("duplicate wrote tickets=%d messages=%d", len(f.store.tickets), len(f.store.messages))
	}
}

func TestEngineDedupFastPathSkipsDatabase(t *testing.T) {
	f := newEngineFixture()
	f.dedup.seen["<orig-1@example.com>"] = true

	result, err := f.engine.Process(context.Background(), newMessage())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeDuplicate)
	}
	if f.store.existsCalls != 0 {
		t.Errorf("existence checks = %d, want 0 when redis already has the id", f.store.existsCalls)
	}
}

func TestEngineAppendsReplyToExistingTicket(t *testing.T) {
	f := newEngineFixture()
	contact := f.knownContact()

	anchor := "<orig-1@example.com>"
	f.store.seedTicket(domain.Ticket{
		ID:             "ticket-1",
		TenantID:       contact.TenantID,
		ContactID:      contact.ID,
		Subject:        "Printer on fire",
		Status:         domain.TicketStatusOpen,
		EmailMessageID: &anchor,
		EmailThreadID:  &anchor,
	})

	msg := newMessage()
	msg.MessageID = "<reply-1@example.com>"
	msg.ReferenceIDs = []string{anchor}
	msg.Body = "Still burning."

	result, err := f.engine.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeAppended {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAppended)
	}
	if result.TicketID != "ticket-1" {
		t.Errorf("ticket = %s, want ticket-1", result.TicketID)
	}
	if len(f.store.tickets) != 1 {
		t.Errorf("append created a new ticket")
	}
	if len(f.store.messages) != 1 || f.store.messages[0].TicketID != "ticket-1" {
		t.Errorf("reply not attached to the thread ticket")
	}
	if got := f.store.statusByID["ticket-1"]; got != domain.TicketStatusOpen {
		t.Errorf("status = %s, open ticket must keep its status", got)
	}
}

func TestEngineReopensResolvedTickets(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusClosed, domain.TicketStatusResolved} {
		t.Run(string(status), func(t *testing.T) {
			f := newEngineFixture()
			contact := f.knownContact()

			anchor := "<orig-1@example.com>"
			f.store.seedTicket(domain.Ticket{
				ID:             "ticket-1",
				TenantID:       contact.TenantID,
				ContactID:      contact.ID,
				Status:         status,
				EmailMessageID: &anchor,
				EmailThreadID:  &anchor,
			})

			msg := newMessage()
			msg.MessageID = "<reply-1@example.com>"
			msg.ReferenceIDs = []string{anchor}

			result, err := f.engine.Process(context.Background(), msg)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if result.Outcome != OutcomeAppended {
				t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeAppended)
			}
			if got := f.store.statusByID["ticket-1"]; got != domain.TicketStatusOpen {
				t.Errorf("status = %s, want OPEN after customer reply", got)
			}
		})
	}
}

func TestEngineUnknownSenderIsUnrouteable(t *testing.T) {
	f := newEngineFixture()

	result, err := f.engine.Process(context.Background(), newMessage())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeUnrouteable {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeUnrouteable)
	}
	if len(f.store.tickets) != 0 || len(f.store.messages) != 0 || len(f.store.attachments) != 0 {
		t.Errorf("unrouteable message must write nothing")
	}
	if len(f.dedup.marked) != 0 {
		t.Errorf("unrouteable message must not be marked processed")
	}
}

func TestEngineReplyFromForeignTenantIsUnrouteable(t *testing.T) {
	f := newEngineFixture()
	// Sender exists, but in a different tenant than the ticket.
	f.contact.contacts = append(f.contact.contacts, domain.Contact{
		ID: "contact-2", TenantID: "tenant-2", Email: "jane@example.com",
	})

	anchor := "<orig-1@example.com>"
	f.store.seedTicket(domain.Ticket{
		ID:             "ticket-1",
		TenantID:       "tenant-1",
		ContactID:      "contact-other",
		Status:         domain.TicketStatusOpen,
		EmailMessageID: &anchor,
	})

	msg := newMessage()
	msg.MessageID = "<reply-1@example.com>"
	msg.ReferenceIDs = []string{anchor}

	result, err := f.engine.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeUnrouteable {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeUnrouteable)
	}
	if len(f.store.messages) != 0 {
		t.Errorf("foreign-tenant reply must not be attached")
	}
}

func TestEngineWriteFailureRollsBackAndRetries(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()
	f.store.failCreateMessage = true

	_, err := f.engine.Process(context.Background(), newMessage())
	if err == nil {
		t.Fatal("Process should surface the write failure")
	}
	if len(f.store.tickets) != 0 {
		t.Errorf("rollback must leave no ticket without its message")
	}
	if len(f.dedup.marked) != 0 {
		t.Errorf("failed message must stay unmarked so the next poll retries it")
	}
}

func TestEngineAttachmentPartialFailure(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()
	f.objects.failSubstr = "broken.pdf"

	msg := newMessage()
	msg.Attachments = []mail.AttachmentData{
		{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("x")},
		{Name: "ok.txt", MimeType: "text/plain", Data: []byte("hello")},
	}

	result, err := f.engine.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeCreated)
	}
	if len(f.store.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(f.store.messages))
	}
	if len(f.store.attachments) != 1 {
		t.Fatalf("attachment rows = %d, want 1 (failed store skipped)", len(f.store.attachments))
	}
	att := f.store.attachments[0]
	if att.Name != "ok.txt" {
		t.Errorf("surviving attachment = %s, want ok.txt", att.Name)
	}
	if !strings.HasPrefix(att.Path, "attachments/"+result.TicketID+"/") {
		t.Errorf("attachment path = %s, want under attachments/%s/", att.Path, result.TicketID)
	}
	if att.SizeBytes != int64(len("hello")) {
		t.Errorf("size = %d, want %d", att.SizeBytes, len("hello"))
	}
}

func TestEngineMissingMessageIDSkipsDedup(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()

	msg := newMessage()
	msg.MessageID = ""

	result, err := f.engine.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != OutcomeCreated {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeCreated)
	}
	if f.store.existsCalls != 0 {
		t.Errorf("existence checks = %d, want 0 without a message-id", f.store.existsCalls)
	}
	if len(f.dedup.marked) != 0 {
		t.Errorf("nothing to mark without a message-id")
	}
	if f.store.tickets[0].EmailMessageID != nil {
		t.Errorf("ticket must not carry an empty message-id")
	}
}
