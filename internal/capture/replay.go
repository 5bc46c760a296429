package capture

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
)

// Recorder is a core.Sender that records everything it delivers, optionally
// forwarding to an inner sender. It is how replay (and the test harness)
// observes the messages a turn produced.
type Recorder struct {
	mu    sync.Mutex
	inner core.Sender
	msgs  []domain.Message
}

// NewRecorder records without delivering; wrap an inner sender with
// NewForwardingRecorder to observe live traffic.
func NewRecorder() *Recorder { return &Recorder{} }

func NewForwardingRecorder(inner core.Sender) *Recorder {
	return &Recorder{inner: inner}
}

func (r *Recorder) Send(ctx context.Context, msg domain.Message) error {
	if r.inner != nil {
		if err := r.inner.Send(ctx, msg); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

// Drain returns everything recorded since the last drain.
func (r *Recorder) Drain() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

// TurnRunner dispatches one inbound message; satisfied by app.Dispatcher.
type TurnRunner interface {
	Dispatch(ctx context.Context, in domain.Inbound) error
}

// Replay feeds a fixture's inbound messages through a dispatcher wired to
// rec and requires each turn's outgoing set to match the expectation
// byte for byte. Sets are compared order-insensitively because fan-out
// order over a member query is not part of the contract.
func Replay(ctx context.Context, f *Fixture, run TurnRunner, rec *Recorder) error {
	for i, ia := range f.Interactions {
		rec.Drain()
		if err := run.Dispatch(ctx, ia.Incoming); err != nil {
			return fmt.Errorf("fixture %q interaction %d: %w", f.Name, i, err)
		}
		got := rec.Drain()
		if err := sameMessageSet(ia.Expected, got); err != nil {
			return fmt.Errorf("fixture %q interaction %d (body %q): %w", f.Name, i, ia.Incoming.Body, err)
		}
	}
	return nil
}

func sameMessageSet(want, got []domain.Message) error {
	if len(want) != len(got) {
		return fmt.Errorf("expected %d outgoing messages, got %d", len(want), len(got))
	}
	w := append([]domain.Message(nil), want...)
	g := append([]domain.Message(nil), got...)
	key := func(m domain.Message) string { return m.To + "\x00" + m.From + "\x00" + m.Body }
	sort.Slice(w, func(i, j int) bool { return key(w[i]) < key(w[j]) })
	sort.Slice(g, func(i, j int) bool { return key(g[i]) < key(g[j]) })
	for i := range w {
		if w[i] != g[i] {
			return fmt.Errorf("outgoing mismatch: want %+v, got %+v", w[i], g[i])
		}
	}
	return nil
}
