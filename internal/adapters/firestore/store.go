// Package firestore persists the member directory, reply buffers and
// capture session in Cloud Firestore, using the collection layout the
// deployment has always had: numbr for members, glbvar for buffers.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
)

const (
	memberCollection  = "numbr"
	bufferCollection  = "glbvar"
	captureCollection = "capture"
	captureDocID      = "session"
)

type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) queryOne(ctx context.Context, q firestore.Query) (*domain.Member, error) {
	it := q.Limit(1).Documents(ctx)
	defer it.Stop()
	doc, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("member query: %w", err)
	}
	var m domain.Member
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("member decode: %w", err)
	}
	m.ID = doc.Ref.ID
	return &m, nil
}

func (s *Store) FindByPhone(ctx context.Context, number string) (*domain.Member, error) {
	return s.queryOne(ctx, s.client.Collection(memberCollection).Where("phonNbr", "==", number))
}

func (s *Store) FindByName(ctx context.Context, name string) (*domain.Member, error) {
	return s.queryOne(ctx, s.client.Collection(memberCollection).Where("ucName", "==", strings.ToUpper(name)))
}

func (s *Store) Upsert(ctx context.Context, m *domain.Member) error {
	col := s.client.Collection(memberCollection)
	if m.ID == "" {
		ref, _, err := col.Add(ctx, m)
		if err != nil {
			return fmt.Errorf("member create: %w", err)
		}
		m.ID = ref.ID
		return nil
	}
	if _, err := col.Doc(m.ID).Set(ctx, m); err != nil {
		return fmt.Errorf("member update: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, m *domain.Member) error {
	if m.ID == "" {
		return fmt.Errorf("delete member %s: no document id", m.Name)
	}
	if _, err := s.client.Collection(memberCollection).Doc(m.ID).Delete(ctx); err != nil {
		return fmt.Errorf("member delete: %w", err)
	}
	return nil
}

// roleField maps role names as typed in commands onto persisted field
// names; the store schema predates the lower-case convention.
func roleField(role string) string {
	if role == "natoffice" {
		return "natOffice"
	}
	return role
}

func (s *Store) ListByRole(ctx context.Context, role string) ([]*domain.Member, error) {
	it := s.client.Collection(memberCollection).Where(roleField(role), "==", true).Documents(ctx)
	defer it.Stop()
	var out []*domain.Member
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("role query %s: %w", role, err)
		}
		var m domain.Member
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("member decode: %w", err)
		}
		m.ID = doc.Ref.ID
		out = append(out, &m)
	}
	return out, nil
}

func bufferDocID(idx int) string { return fmt.Sprintf("glbvar-%d", idx) }

func (s *Store) Load(ctx context.Context, g domain.Group) (*domain.ReplyBuffer, error) {
	doc, err := s.client.Collection(bufferCollection).Doc(bufferDocID(g.Index())).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.NewReplyBuffer(g), nil
	}
	if err != nil {
		return nil, fmt.Errorf("buffer load: %w", err)
	}
	var b domain.ReplyBuffer
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("buffer decode: %w", err)
	}
	return &b, nil
}

func (s *Store) Save(ctx context.Context, b *domain.ReplyBuffer) error {
	if _, err := s.client.Collection(bufferCollection).Doc(bufferDocID(b.Index)).Set(ctx, b); err != nil {
		return fmt.Errorf("buffer save: %w", err)
	}
	return nil
}

// Captures adapts the store to core.CaptureStore; the Load/Save names
// collide with BufferStore's on a single receiver.
func (s *Store) Captures() core.CaptureStore { return captures{s} }

type captures struct{ s *Store }

func (c captures) Load(ctx context.Context) (*core.CaptureSession, error) {
	doc, err := c.s.client.Collection(captureCollection).Doc(captureDocID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &core.CaptureSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("capture load: %w", err)
	}
	var sess core.CaptureSession
	if err := doc.DataTo(&sess); err != nil {
		return nil, fmt.Errorf("capture decode: %w", err)
	}
	return &sess, nil
}

func (c captures) Save(ctx context.Context, sess *core.CaptureSession) error {
	if _, err := c.s.client.Collection(captureCollection).Doc(captureDocID).Set(ctx, sess); err != nil {
		return fmt.Errorf("capture save: %w", err)
	}
	return nil
}

func (c captures) Clear(ctx context.Context) error {
	if _, err := c.s.client.Collection(captureCollection).Doc(captureDocID).Delete(ctx); err != nil {
		return fmt.Errorf("capture clear: %w", err)
	}
	return nil
}

// EnsureOwner seeds the well-known owner record when it is missing, so a
// fresh database always has one super admin.
func (s *Store) EnsureOwner(ctx context.Context, phoneNumber, name string) error {
	_, err := s.FindByPhone(ctx, phoneNumber)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	m, err := domain.NewMember(name, phoneNumber)
	if err != nil {
		return err
	}
	m.Admin = true
	m.Super = true
	m.Armorer = true
	if err := s.Upsert(ctx, m); err != nil {
		return err
	}
	log.Info().Str("module", "adapters.firestore").Str("name", name).Msg("seeded owner record")
	return nil
}
