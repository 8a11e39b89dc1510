package ingest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spec-kit/helpdesk/internal/mail"
)

func TestNormalizePrefersPlainText(t *testing.T) {
	raw := &mail.RawMessage{
		From:     "Jane Doe <jane@example.com>",
		Subject:  "  Printer on fire  ",
		TextBody: "plain body\n",
		HTMLBody: "<p>html body</p>",
	}

	msg, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if msg.Body != "plain body" {
		t.Errorf("body = %q, want plain text part", msg.Body)
	}
	if msg.Subject != "Printer on fire" {
		t.Errorf("subject = %q, want trimmed", msg.Subject)
	}
	if msg.SenderEmail != "jane@example.com" || msg.SenderName != "Jane Doe" {
		t.Errorf("sender = %q <%s>", msg.SenderName, msg.SenderEmail)
	}
}

func TestNormalizeStripsHTMLFallback(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"inline tags", "<p>Hello <b>World</b></p>", "Hello World"},
		{"line breaks", "line one<br>line two", "line one\nline two"},
		{"entities", "a &amp; b &lt;c&gt;", "a & b <c>"},
		{"collapsed blank lines", "<p>a</p><p></p><p></p><p>b</p>", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &mail.RawMessage{From: "jane@example.com", HTMLBody: tt.html}
			msg, err := Normalize(raw)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if msg.Body != tt.want {
				t.Errorf("body = %q, want %q", msg.Body, tt.want)
			}
		})
	}
}

func TestNormalizeSenderNameFallsBackToAddress(t *testing.T) {
	msg, err := Normalize(&mail.RawMessage{From: "jane@example.com", TextBody: "hi"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if msg.SenderName != "jane@example.com" {
		t.Errorf("sender name = %q, want address fallback", msg.SenderName)
	}
}

func TestNormalizeMalformedSender(t *testing.T) {
	_, err := Normalize(&mail.RawMessage{From: "not an address", TextBody: "hi"})
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("err = %v, want ErrMalformedMessage", err)
	}
}

func TestNormalizeReferenceUnionOrder(t *testing.T) {
	raw := &mail.RawMessage{
		From:       "jane@example.com",
		TextBody:   "hi",
		References: []string{"<a@x>", "<b@x>", "<a@x>"},
		InReplyTo:  []string{"<b@x>", "<c@x>"},
	}
	msg, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"<a@x>", "<b@x>", "<c@x>"}
	if !reflect.DeepEqual(msg.ReferenceIDs, want) {
		t.Errorf("reference ids = %v, want %v", msg.ReferenceIDs, want)
	}
}
