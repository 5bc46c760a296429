package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brtech99/stripcalls/internal/capture"
	"github.com/brtech99/stripcalls/internal/config"
	"github.com/brtech99/stripcalls/internal/domain"
	"github.com/brtech99/stripcalls/internal/store"
)

// env is the in-process harness the dispatcher tests run against: memory
// store, recording sender, fixed group numbers.
type env struct {
	t   *testing.T
	cfg *config.Config
	mem *store.Memory
	rec *capture.Recorder
	not *spyNotifier
	d   *Dispatcher
}

type spyNotifier struct {
	subjects []string
	bodies   []string
}

func (n *spyNotifier) NotifyOperator(_ context.Context, subject, body string) {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
}

func testConfig() *config.Config {
	return &config.Config{
		ArmorerNumber:   "+15550000001",
		MedicNumber:     "+15550000002",
		NatOfficeNumber: "+15550000003",
		SmsChunkLimit:   155,
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := testConfig()
	mem := store.NewMemory()
	rec := capture.NewRecorder()
	not := &spyNotifier{}
	return &env{
		t:   t,
		cfg: cfg,
		mem: mem,
		rec: rec,
		not: not,
		d:   New(cfg, mem, mem, mem.Captures(), rec, not),
	}
}

// seed inserts a member with the stored-form number.
func (e *env) seed(name, stored string, mut func(*domain.Member)) *domain.Member {
	e.t.Helper()
	m, err := domain.NewMember(name, stored)
	require.NoError(e.t, err)
	if mut != nil {
		mut(m)
	}
	require.NoError(e.t, e.mem.Upsert(context.Background(), m))
	return m
}

// dispatch runs one turn and returns everything the system sent.
func (e *env) dispatch(from, to, body string) []domain.Message {
	e.t.Helper()
	require.NoError(e.t, e.d.Dispatch(context.Background(), domain.Inbound{From: from, To: to, Body: body}))
	return e.rec.Drain()
}

// member looks a seeded member back up by name.
func (e *env) member(name string) *domain.Member {
	e.t.Helper()
	m, err := e.mem.FindByName(context.Background(), name)
	require.NoError(e.t, err)
	return m
}
