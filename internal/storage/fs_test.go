package storage

import (
	"context"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	key := "attachments/ticket-1/abc_report.txt"
	payload := []byte("quarterly numbers")
	if err := store.Put(context.Background(), key, payload, "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, contentType, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("data = %q, want %q", data, payload)
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", contentType)
	}
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	for _, key := range []string{"../outside.txt", "/etc/passwd", "a/../../outside.txt"} {
		if err := store.Put(context.Background(), key, []byte("x"), ""); err == nil {
			t.Errorf("Put(%q) accepted a key escaping the root", key)
		}
		if _, _, err := store.Get(context.Background(), key); err == nil {
			t.Errorf("Get(%q) accepted a key escaping the root", key)
		}
	}
}
