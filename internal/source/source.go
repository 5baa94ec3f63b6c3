// Package source abstracts where invoices come from. The batch only needs to
// enumerate threads, their messages, and named binary attachments, so any
// backing store (mail export, filesystem drop, bucket sync) can satisfy it.
package source

import "context"

// Provider yields conversation threads in retrieval order.
type Provider interface {
	Threads(ctx context.Context) ([]Thread, error)
}

// Thread yields its messages in retrieval order.
type Thread interface {
	ID() string
	Messages(ctx context.Context) ([]Message, error)
}

// Message yields its attachments in retrieval order.
type Message interface {
	ID() string
	Attachments(ctx context.Context) ([]Attachment, error)
}

// Attachment is a named blob; Content is read lazily, once, by the batch.
type Attachment interface {
	Name() string
	Content(ctx context.Context) ([]byte, error)
}
