package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brtech99/stripcalls/internal/capture"
	"github.com/brtech99/stripcalls/internal/domain"
)

func seedCaptureCrew(e *env) {
	e.seed("Brian", "7246122359", func(m *domain.Member) { m.Admin = true; m.Super = true; m.Armorer = true })
	e.seed("Alice", "2025551001", func(m *domain.Member) { m.Armorer = true })
}

func TestCaptureRoundTrip(t *testing.T) {
	e := newEnv(t)
	seedCaptureCrew(e)

	msgs := e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture start demo")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Capture started: demo", msgs[0].Body)

	e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+status")
	e.dispatch("+12025551001", e.cfg.ArmorerNumber, "hello all")

	msgs = e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture stop")
	require.Len(t, msgs, 1)

	f, err := capture.Parse([]byte(msgs[0].Body))
	require.NoError(t, err)
	assert.Equal(t, "demo", f.Name)
	require.Len(t, f.Interactions, 2)
	assert.Equal(t, "+status", f.Interactions[0].Incoming.Body)
	assert.Equal(t, "hello all", f.Interactions[1].Incoming.Body)
	for _, ia := range f.Interactions {
		assert.False(t, strings.HasPrefix(ia.Incoming.Body, "+capture"),
			"capture control turns must not record themselves")
	}

	// The fixture must replay cleanly against a fresh system seeded the
	// same way.
	e2 := newEnv(t)
	seedCaptureCrew(e2)
	require.NoError(t, capture.Replay(context.Background(), f, e2.d, e2.rec))
}

func TestCaptureStartResetsBuffer(t *testing.T) {
	e := newEnv(t)
	seedCaptureCrew(e)

	// Park the buffer somewhere mid-cycle first.
	e.dispatch("+13015550001", e.cfg.ArmorerNumber, "strip 2")
	e.dispatch("+13015550002", e.cfg.ArmorerNumber, "strip 3")

	e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture start demo")
	buf, err := e.mem.Load(context.Background(), domain.GroupArmorer)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Pointer)
	for n := 1; n <= domain.BufferSlots; n++ {
		assert.Empty(t, buf.Slot(n))
	}
}

func TestCaptureStopWithoutStart(t *testing.T) {
	e := newEnv(t)
	seedCaptureCrew(e)

	msgs := e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture stop")
	require.Len(t, msgs, 1)
	assert.Equal(t, "No capture session is active", msgs[0].Body)
}

func TestCaptureBadSubcommand(t *testing.T) {
	e := newEnv(t)
	seedCaptureCrew(e)

	msgs := e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture pause")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Invalid syntax for +capture. Usage: +capture start name | +capture stop", msgs[0].Body)

	msgs = e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture start")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Invalid syntax for +capture. Usage: +capture start name | +capture stop", msgs[0].Body)
}

func TestCaptureSessionSurvivesBetweenTurns(t *testing.T) {
	e := newEnv(t)
	seedCaptureCrew(e)

	e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture start demo")

	// Each of these is a separate webhook turn; the session is reloaded
	// from the store every time.
	e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+status")
	e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+help")

	msgs := e.dispatch("+17246122359", e.cfg.ArmorerNumber, "+capture stop")
	require.Len(t, msgs, 1)
	f, err := capture.Parse([]byte(msgs[0].Body))
	require.NoError(t, err)
	assert.Len(t, f.Interactions, 2)
}
