package mail

// RawMessage is one fetched mailbox message before normalization. From
// carries the raw header value; sender parsing and validation happen in
// the ingestion normalizer.
type RawMessage struct {
	UID        uint32
	From       string
	Subject    string
	MessageID  string
	InReplyTo  []string
	References []string
	RawHeader  string
	TextBody   string
	HTMLBody   string

	Attachments []AttachmentData
}

// AttachmentData holds one decoded attachment part.
type AttachmentData struct {
	Name     string
	MimeType string
	Data     []byte
}
