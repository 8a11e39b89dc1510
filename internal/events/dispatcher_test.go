package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		t.Error("handler for a different event type invoked")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0] != "t-1" {
		t.Errorf("delivered = %v, want [t-1]", got)
	}
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("handler broke")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		second = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !second {
		t.Error("second handler skipped after first errored")
	}
}
