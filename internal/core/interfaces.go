package core

import (
	"context"

	"github.com/brtech99/stripcalls/internal/domain"
)

// Directory is the member store consumed by the command handlers and the
// broadcast engine. Every call is atomic on its own but there is no
// cross-call transaction; read-modify-write sequences can race and lose an
// update. That weak-consistency window is a documented property of the
// deployment, not something an implementation should paper over with locks.
type Directory interface {
	// FindByPhone looks a member up by stored-form number. Returns
	// ErrNotFound when no record matches.
	FindByPhone(ctx context.Context, number string) (*domain.Member, error)
	// FindByName looks a member up case-insensitively by name.
	FindByName(ctx context.Context, name string) (*domain.Member, error)
	// Upsert writes the record keyed by phone number, creating it if new.
	Upsert(ctx context.Context, m *domain.Member) error
	// Delete removes the record. Hard delete, no tombstone.
	Delete(ctx context.Context, m *domain.Member) error
	// ListByRole returns every member whose flag for the role name
	// ("armorer", "medic", "natoffice", "ref", "admin") is set.
	ListByRole(ctx context.Context, role string) ([]*domain.Member, error)
}

// BufferStore persists the per-group reply buffers.
type BufferStore interface {
	Load(ctx context.Context, g domain.Group) (*domain.ReplyBuffer, error)
	Save(ctx context.Context, b *domain.ReplyBuffer) error
}

// CaptureStore persists the single system-wide capture session between
// webhook turns. Single-writer by design: concurrent capture sessions
// clobber each other, which operators accept for a test-only facility.
type CaptureStore interface {
	Load(ctx context.Context) (*CaptureSession, error)
	Save(ctx context.Context, s *CaptureSession) error
	Clear(ctx context.Context) error
}

// Sender delivers one outgoing message. Implementations must not retry; a
// failed send is logged by the caller and skipped.
type Sender interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Notifier receives out-of-band operator alerts for unhandled dispatch
// faults.
type Notifier interface {
	NotifyOperator(ctx context.Context, subject, body string)
}

// CaptureDirection tags a recorded event as inbound or outbound.
type CaptureDirection string

const (
	CaptureIncoming CaptureDirection = "incoming"
	CaptureOutgoing CaptureDirection = "outgoing"
)

// CapturedEvent is one recorded message in a capture session.
type CapturedEvent struct {
	Direction CaptureDirection `firestore:"direction"`
	From      string           `firestore:"from"`
	To        string           `firestore:"to"`
	Body      string           `firestore:"body"`
}

// CaptureSession accumulates events between "+capture start" and
// "+capture stop".
type CaptureSession struct {
	Active bool            `firestore:"active"`
	Name   string          `firestore:"name"`
	Events []CapturedEvent `firestore:"events"`
}
