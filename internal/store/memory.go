// Package store provides the in-memory store used by tests, the dev mode
// of the server, and fixture replay.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
)

// Memory implements core.Directory, core.BufferStore and core.CaptureStore
// with mutex-guarded maps. Records are copied on the way in and out so
// callers can mutate their own copy and write it back, matching the
// read-then-write contract of the real document store.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Member
	buffers map[int]*domain.ReplyBuffer
	capture *core.CaptureSession
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*domain.Member),
		buffers: make(map[int]*domain.ReplyBuffer),
	}
}

func copyMember(m *domain.Member) *domain.Member {
	c := *m
	return &c
}

func (s *Memory) FindByPhone(_ context.Context, number string) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.byID {
		if m.PhoneNumber == number {
			return copyMember(m), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Memory) FindByName(_ context.Context, name string) (*domain.Member, error) {
	upper := strings.ToUpper(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.byID {
		if m.NameUpper == upper {
			return copyMember(m), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Memory) Upsert(_ context.Context, m *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.byID[m.ID] = copyMember(m)
	log.Debug().Str("module", "store.memory").Str("phone", m.PhoneNumber).Str("name", m.Name).Msg("upserted member")
	return nil
}

func (s *Memory) Delete(_ context.Context, m *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, m.ID)
	log.Debug().Str("module", "store.memory").Str("phone", m.PhoneNumber).Msg("deleted member")
	return nil
}

func roleSet(m *domain.Member, role string) bool {
	switch role {
	case "armorer":
		return m.Armorer
	case "medic":
		return m.Medic
	case "natoffice":
		return m.NatOffice
	case "ref":
		return m.Ref
	case "admin":
		return m.Admin
	case "super":
		return m.Super
	}
	return false
}

func (s *Memory) ListByRole(_ context.Context, role string) ([]*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Member, 0, len(s.byID))
	for _, m := range s.byID {
		if roleSet(m, role) {
			out = append(out, copyMember(m))
		}
	}
	// Map iteration order would leak into list output and capture
	// fixtures, so keep it deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].NameUpper < out[j].NameUpper })
	return out, nil
}

func (s *Memory) Load(_ context.Context, g domain.Group) (*domain.ReplyBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.buffers[g.Index()]; ok {
		c := *b
		return &c, nil
	}
	return domain.NewReplyBuffer(g), nil
}

func (s *Memory) Save(_ context.Context, b *domain.ReplyBuffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.buffers[b.Index] = &c
	return nil
}

func (s *Memory) LoadCapture(_ context.Context) (*core.CaptureSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.capture == nil {
		return &core.CaptureSession{}, nil
	}
	c := *s.capture
	c.Events = append([]core.CapturedEvent(nil), s.capture.Events...)
	return &c, nil
}

func (s *Memory) SaveCapture(_ context.Context, sess *core.CaptureSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sess
	c.Events = append([]core.CapturedEvent(nil), sess.Events...)
	s.capture = &c
	return nil
}

func (s *Memory) ClearCapture(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capture = nil
	return nil
}

// Captures adapts Memory to core.CaptureStore, whose method names collide
// with BufferStore's on a single receiver.
func (s *Memory) Captures() core.CaptureStore { return memCaptures{s} }

type memCaptures struct{ s *Memory }

func (c memCaptures) Load(ctx context.Context) (*core.CaptureSession, error) {
	return c.s.LoadCapture(ctx)
}

func (c memCaptures) Save(ctx context.Context, sess *core.CaptureSession) error {
	return c.s.SaveCapture(ctx, sess)
}

func (c memCaptures) Clear(ctx context.Context) error {
	return c.s.ClearCapture(ctx)
}
