package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
	"github.com/brtech99/stripcalls/internal/phone"
)

// runBroadcast handles a non-command turn. Senders who are not members of
// the addressed group take a quick-reply slot and the broadcast body gets
// the "+N to reply" hint; guests and refs get a bare acknowledgment after
// the fan-out.
func (d *Dispatcher) runBroadcast(ctx context.Context, t *Turn) {
	body := t.In.Body
	inGroup := t.Sender != nil && t.Sender.HasRole(t.Group)

	if !inGroup {
		buf, err := d.buffers.Load(ctx, t.Group)
		if err != nil {
			d.replyError(ctx, t, fmt.Errorf("reply buffer load: %w", err))
			return
		}
		n := buf.Advance(phone.StripUS(t.FromWire))
		if err := d.buffers.Save(ctx, buf); err != nil {
			d.replyError(ctx, t, fmt.Errorf("reply buffer save: %w", err))
			return
		}
		body = fmt.Sprintf("%s  +%d to reply", body, n)
	}

	d.sendToGroup(ctx, t, t.Identity(), t.Group, body, phone.StripUS(t.FromWire))

	if t.Sender == nil || (t.Sender.Ref && !inGroup) {
		t.reply(ctx, "Got It")
	}
}

// sendToGroup fans a message out to every active member of the group,
// excluding the sender's own number. One recipient's send failure never
// aborts delivery to the rest.
func (d *Dispatcher) sendToGroup(ctx context.Context, t *Turn, identity string, g domain.Group, body, excludeStored string) {
	members, err := d.dir.ListByRole(ctx, g.String())
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		log.Error().Err(err).Str("module", "app.broadcast").Str("group", g.String()).Msg("group query failed")
		return
	}
	from := d.cfg.GroupNumber(g)
	sent := 0
	for _, m := range members {
		if !m.Active || phone.Same(m.PhoneNumber, excludeStored) {
			continue
		}
		t.send(ctx, domain.Message{
			To:   phone.Display(m.PhoneNumber),
			Body: fmt.Sprintf("%s: %s", identity, body),
			From: from,
		})
		sent++
	}
	log.Debug().Str("module", "app.broadcast").Str("group", g.String()).Int("sent_to", sent).Msg("broadcast complete")
}
