package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/mail"
)

type fakeMailbox struct {
	raws     []mail.RawMessage
	fetchErr error
	seen     []uint32
}

func (m *fakeMailbox) FetchUnseen(_ context.Context, _ time.Time, limit int) ([]mail.RawMessage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if limit > 0 && len(m.raws) > limit {
		return m.raws[:limit], nil
	}
	return m.raws, nil
}

func (m *fakeMailbox) MarkSeen(_ context.Context, uid uint32) error {
	m.seen = append(m.seen, uid)
	return nil
}

func TestRunnerIsolatesPerMessageFailures(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()

	var raws []mail.RawMessage
	for i := 1; i <= 5; i++ {
		raw := mail.RawMessage{
			UID:       uint32(i),
			From:      "Jane Doe <jane@example.com>",
			Subject:   fmt.Sprintf("issue %d", i),
			MessageID: fmt.Sprintf("<msg-%d@example.com>", i),
			TextBody:  "body",
		}
		if i == 3 {
			raw.From = "broken header" // unparseable sender
		}
		raws = append(raws, raw)
	}

	mailbox := &fakeMailbox{raws: raws}
	runner := NewRunner(mailbox, f.engine, nil, zap.NewNop())

	summary, err := runner.Run(context.Background(), time.Now().Add(-time.Hour), 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Total != 5 {
		t.Errorf("total = %d, want 5", summary.Total)
	}
	if summary.Processed != 4 {
		t.Errorf("processed = %d, want 4", summary.Processed)
	}
	if summary.Errors != 1 {
		t.Errorf("errors = %d, want 1", summary.Errors)
	}

	wantSeen := []uint32{1, 2, 4, 5}
	if len(mailbox.seen) != len(wantSeen) {
		t.Fatalf("seen = %v, want %v", mailbox.seen, wantSeen)
	}
	for i, uid := range wantSeen {
		if mailbox.seen[i] != uid {
			t.Errorf("seen[%d] = %d, want %d (failed message must stay unseen)", i, mailbox.seen[i], uid)
		}
	}
}

func TestRunnerCountsSkippedOutcomes(t *testing.T) {
	f := newEngineFixture()
	// No contacts registered: every message is unrouteable.

	mailbox := &fakeMailbox{raws: []mail.RawMessage{{
		UID:       9,
		From:      "stranger@example.com",
		MessageID: "<stranger-1@example.com>",
		TextBody:  "who am I",
	}}}
	runner := NewRunner(mailbox, f.engine, nil, zap.NewNop())

	summary, err := runner.Run(context.Background(), time.Now().Add(-time.Hour), 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 0 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want one skipped message", summary)
	}
	// Unrouteable mail is still marked seen so it is not re-fetched forever.
	if len(mailbox.seen) != 1 || mailbox.seen[0] != 9 {
		t.Errorf("seen = %v, want [9]", mailbox.seen)
	}
}

func TestRunnerFetchFailureAbortsRun(t *testing.T) {
	f := newEngineFixture()
	mailbox := &fakeMailbox{fetchErr: errors.New("connection reset")}
	runner := NewRunner(mailbox, f.engine, nil, zap.NewNop())

	if _, err := runner.Run(context.Background(), time.Now(), 50); err == nil {
		t.Fatal("Run should fail when the mailbox fetch fails")
	}
}

func TestRunnerHonorsBatchLimit(t *testing.T) {
	f := newEngineFixture()
	f.knownContact()

	var raws []mail.RawMessage
	for i := 1; i <= 4; i++ {
		raws = append(raws, mail.RawMessage{
			UID:       uint32(i),
			From:      "jane@example.com",
			MessageID: fmt.Sprintf("<lim-%d@example.com>", i),
			TextBody:  "body",
		})
	}
	mailbox := &fakeMailbox{raws: raws}
	runner := NewRunner(mailbox, f.engine, nil, zap.NewNop())

	summary, err := runner.Run(context.Background(), time.Now().Add(-time.Hour), 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 2 || summary.Processed != 2 {
		t.Errorf("summary = %+v, want exactly the limited batch", summary)
	}
}
