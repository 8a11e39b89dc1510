package ingest

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"regexp"
	"strings"

	"github.com/spec-kit/helpdesk/internal/mail"
)

// ErrMalformedMessage marks messages whose sender address cannot be
// parsed. The runner counts these as per-message errors; they never
// abort the batch.
var ErrMalformedMessage = errors.New("malformed message")

// NormalizedMessage is the canonical representation of one inbound
// email. ReferenceIDs is the References header unioned with In-Reply-To,
// in that order; it is used only for thread lookup and never persisted
// verbatim.
type NormalizedMessage struct {
	UID          uint32
	SenderEmail  string
	SenderName   string
	Subject      string
	Body         string
	MessageID    string
	RawHeaders   string
	ReferenceIDs []string
	Attachments  []mail.AttachmentData
}

// Normalize converts a raw mailbox message into its canonical form.
// Body extraction prefers plain text; an HTML-only message is stripped
// to text best-effort since tickets are read by humans, not re-rendered.
func Normalize(raw *mail.RawMessage) (*NormalizedMessage, error) {
	addr, err := netmail.ParseAddress(raw.From)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable sender %q: %v", ErrMalformedMessage, raw.From, err)
	}

	senderName := addr.Name
	if senderName == "" {
		senderName = addr.Address
	}

	body := strings.TrimSpace(raw.TextBody)
	if body == "" && raw.HTMLBody != "" {
		body = stripHTML(raw.HTMLBody)
	}

	return &NormalizedMessage{
		UID:          raw.UID,
		SenderEmail:  addr.Address,
		SenderName:   senderName,
		Subject:      strings.TrimSpace(raw.Subject),
		Body:         body,
		MessageID:    raw.MessageID,
		RawHeaders:   raw.RawHeader,
		ReferenceIDs: unionIDs(raw.References, raw.InReplyTo),
		Attachments:  raw.Attachments,
	}, nil
}

// unionIDs appends In-Reply-To ids after the References chain, dropping
// duplicates while preserving header order. First match wins downstream,
// so order matters.
func unionIDs(references, inReplyTo []string) []string {
	seen := make(map[string]struct{}, len(references)+len(inReplyTo))
	var out []string
	for _, group := range [][]string{references, inReplyTo} {
		for _, id := range group {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML converts an HTML body to plain text: block-level closers
// become newlines, remaining tags are removed, common entities decoded.
func stripHTML(html string) string {
	result := html
	for _, tag := range []string{"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>"} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
