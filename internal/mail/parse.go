package mail

import (
	"bytes"
	"io"
	"strings"

	gomail "github.com/emersion/go-message/mail"
)

// parseRaw extracts headers, bodies and attachments from a raw RFC 5322
// message. A message that fails MIME parsing is treated as plain text so
// a broken part never loses the whole message.
func parseRaw(raw []byte) RawMessage {
	msg := RawMessage{RawHeader: rawHeaderBlock(raw)}

	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		msg.TextBody = strings.TrimSpace(string(raw))
		return msg
	}
	defer mr.Close()

	header := mr.Header
	msg.From = header.Get("From")
	if subject, err := header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = header.Get("Subject")
	}
	if id, err := header.MessageID(); err == nil {
		msg.MessageID = id
	}
	if refs, err := header.MsgIDList("References"); err == nil {
		msg.References = refs
	}
	if irt, err := header.MsgIDList("In-Reply-To"); err == nil {
		msg.InReplyTo = irt
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *gomail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				if msg.TextBody == "" {
					msg.TextBody = string(body)
				}
			case strings.HasPrefix(contentType, "text/html"):
				if msg.HTMLBody == "" {
					msg.HTMLBody = string(body)
				}
			}

		case *gomail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			data, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			msg.Attachments = append(msg.Attachments, AttachmentData{
				Name:     filename,
				MimeType: contentType,
				Data:     data,
			})
		}
	}

	return msg
}

// rawHeaderBlock returns the header section of the message verbatim, for
// persistence alongside email-sourced ticket messages.
func rawHeaderBlock(raw []byte) string {
	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx >= 0 {
		return string(raw[:idx])
	}
	if idx := bytes.Index(raw, []byte("\n\n")); idx >= 0 {
		return string(raw[:idx])
	}
	return string(raw)
}
