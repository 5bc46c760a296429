// Package app implements the command dispatch and group broadcast engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brtech99/stripcalls/internal/config"
	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
	"github.com/brtech99/stripcalls/internal/phone"
)

// apologyBody is the reply for unhandled dispatch faults; the operator is
// notified out-of-band and the turn is abandoned.
const apologyBody = "I'm sorry, something went wrong, we'll take a look"

// HandlerFunc processes one parsed command within a turn.
type HandlerFunc func(ctx context.Context, t *Turn, cmd Command) error

// Dispatcher orchestrates one webhook turn: group resolution, sender
// lookup, parsing, authorization, handler or broadcast execution, and
// response assembly. Each turn is an independent unit of work; the shared
// directory and reply buffers are read-modify-write with no cross-call
// transaction, so concurrent turns against the same group or member can
// race and lose an update. That window is part of the contract.
type Dispatcher struct {
	cfg      *config.Config
	dir      core.Directory
	buffers  core.BufferStore
	captures core.CaptureStore
	sender   core.Sender
	notifier core.Notifier
	handlers map[string]HandlerFunc
}

func New(cfg *config.Config, dir core.Directory, buffers core.BufferStore, captures core.CaptureStore, sender core.Sender, notifier core.Notifier) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		dir:      dir,
		buffers:  buffers,
		captures: captures,
		sender:   sender,
		notifier: notifier,
	}
	d.handlers = d.buildHandlers()
	return d
}

// Turn carries the per-request state threaded through handlers. The
// capture session rides here instead of in a package global so nothing
// couples across requests.
type Turn struct {
	d        *Dispatcher
	In       domain.Inbound
	Group    domain.Group
	Sender   *domain.Member // nil for guests
	FromWire string

	session      *core.CaptureSession
	sessionDirty bool
	// captureTurn marks a "+capture ..." control turn, which is never
	// recorded into the session it manages.
	captureTurn bool
}

// Identity is the sender's display name, falling back to the wire number
// for guests.
func (t *Turn) Identity() string {
	if t.Sender != nil {
		return t.Sender.Name
	}
	return t.FromWire
}

// send hands one message to the transport. A failed send is logged and
// skipped, never retried, and never aborts the rest of the turn. Messages
// actually sent are appended to an active capture session.
func (t *Turn) send(ctx context.Context, msg domain.Message) {
	if err := t.d.sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Str("to", msg.To).Msg("send failed, skipping recipient")
		return
	}
	if t.session != nil && t.session.Active && !t.captureTurn {
		t.session.Events = append(t.session.Events, core.CapturedEvent{
			Direction: core.CaptureOutgoing,
			From:      msg.From,
			To:        msg.To,
			Body:      msg.Body,
		})
		t.sessionDirty = true
	}
}

// reply sends a single message back to the sender from the group number.
func (t *Turn) reply(ctx context.Context, body string) {
	t.send(ctx, domain.Message{To: t.FromWire, Body: body, From: t.In.To})
}

// Dispatch processes one inbound message end to end.
func (d *Dispatcher) Dispatch(ctx context.Context, in domain.Inbound) error {
	group, ok := d.cfg.GroupFor(in.To)
	if !ok {
		return fmt.Errorf("inbound To %q is not a configured group number", in.To)
	}

	fromWire := in.From
	if w, err := phone.Normalize(in.From); err == nil {
		fromWire = w
	}

	t := &Turn{d: d, In: in, Group: group, FromWire: fromWire}

	sender, err := d.dir.FindByPhone(ctx, phone.StripUS(fromWire))
	switch {
	case err == nil:
		t.Sender = sender
	case errors.Is(err, core.ErrNotFound):
		// guest
	default:
		return fmt.Errorf("sender lookup: %w", err)
	}

	sess, err := d.captures.Load(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("capture session load failed, recording disabled for turn")
		sess = &core.CaptureSession{}
	}
	t.session = sess
	t.captureTurn = isCaptureCommand(in.Body)
	if sess.Active && !t.captureTurn {
		sess.Events = append(sess.Events, core.CapturedEvent{
			Direction: core.CaptureIncoming,
			From:      in.From,
			To:        in.To,
			Body:      in.Body,
		})
		t.sessionDirty = true
	}

	log.Info().Str("module", "app.dispatch").Str("from", fromWire).Str("group", group.String()).Str("identity", t.Identity()).Msg("inbound message")

	switch {
	case strings.TrimSpace(in.Body) == "":
		d.replyError(ctx, t, core.Validationf("Empty message body, nothing to send"))
	case IsCommand(in.Body):
		d.runCommand(ctx, t)
	default:
		d.runBroadcast(ctx, t)
	}

	if t.session != nil && t.sessionDirty {
		if err := d.captures.Save(ctx, t.session); err != nil {
			log.Error().Err(err).Str("module", "app.dispatch").Msg("capture session save failed")
		}
	}
	return nil
}

func isCaptureCommand(body string) bool {
	cmd, err := ParseCommand(body)
	return err == nil && cmd.Name == "capture"
}

func (d *Dispatcher) runCommand(ctx context.Context, t *Turn) {
	err := func() error {
		cmd, err := ParseCommand(t.In.Body)
		if err != nil {
			return err
		}
		if err := authorize(t, cmd); err != nil {
			return err
		}
		h, ok := d.handlers[cmd.Name]
		if !ok {
			return core.Validationf("Bad command")
		}
		return h(ctx, t, cmd)
	}()
	if err != nil {
		d.replyError(ctx, t, err)
	}
}

// replyError maps the error taxonomy onto a single reply to the sender.
// Anything outside the taxonomy is an unhandled fault: the sender gets a
// generic apology and the operator is alerted.
func (d *Dispatcher) replyError(ctx context.Context, t *Turn, err error) {
	var re *core.ReplyError
	if errors.As(err, &re) {
		t.reply(ctx, re.Body)
		return
	}
	log.Error().Err(err).Str("module", "app.dispatch").Str("from", t.FromWire).Msg("unhandled dispatch fault")
	t.reply(ctx, apologyBody)
	if d.notifier != nil {
		d.notifier.NotifyOperator(ctx, "StripCall Error Report",
			fmt.Sprintf("From=%s Body=%q Err=%v", t.FromWire, t.In.Body, err))
	}
}
