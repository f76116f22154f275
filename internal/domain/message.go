package domain

import "context"

// MessageRecord is one entry of a message export. Only SenderName and
// Content drive corpus building; the rest is kept for the archive.
type MessageRecord struct {
	SenderName  string  `json:"sender_name"`
	Content     *string `json:"content,omitempty"`
	TimestampMs int64   `json:"timestamp_ms,omitempty"`
	Type        string  `json:"type,omitempty"`
}

// HasContent reports whether the record carries a text body.
func (m MessageRecord) HasContent() bool {
	return m.Content != nil
}

// ExportFile is the top-level object of a message_*.json export.
type ExportFile struct {
	Title        string          `json:"title,omitempty"`
	Participants []Participant   `json:"participants,omitempty"`
	Messages     []MessageRecord `json:"messages"`
}

type Participant struct {
	Name string `json:"name"`
}

// MessageSource loads raw message records from wherever they live
// (export files on disk or the SQLite archive).
type MessageSource interface {
	LoadMessages(ctx context.Context) ([]MessageRecord, error)
}
