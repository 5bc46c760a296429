package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/brtech99/stripcalls/internal/capture"
	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
	"github.com/brtech99/stripcalls/internal/phone"
)

const helpBody = "Available commands: +help, +status, +armorer, +medic, +natoffice, +ref, +remove, +list [group], +user, +activate, +deactivate, +admin, +deadmin, +1..+4 to reply"

// buildHandlers assembles the command registry. One handler per command so
// each can be unit tested in isolation.
func (d *Dispatcher) buildHandlers() map[string]HandlerFunc {
	h := map[string]HandlerFunc{
		"help":       handleHelp,
		"status":     handleStatus,
		"armorer":    roleGrant(domain.GroupArmorer),
		"medic":      roleGrant(domain.GroupMedic),
		"natoffice":  roleGrant(domain.GroupNatOffice),
		"ref":        handleRef,
		"addref":     handleAddRef,
		"remove":     handleRemove,
		"activate":   setActive(true),
		"deactivate": setActive(false),
		"admin":      setAdmin(true),
		"deadmin":    setAdmin(false),
		"list":       handleList,
		"user":       handleUser,
		"resetcbp":   handleResetBuffer,
		"capture":    handleCapture,
	}
	for n := 1; n <= domain.BufferSlots; n++ {
		h[strconv.Itoa(n)] = quickReply(n)
	}
	return h
}

func handleHelp(ctx context.Context, t *Turn, _ Command) error {
	t.reply(ctx, helpBody)
	return nil
}

func handleStatus(ctx context.Context, t *Turn, _ Command) error {
	t.reply(ctx, "Service is operational.")
	return nil
}

// findByName wraps the directory lookup, translating store misses to nil.
func (t *Turn) findByName(ctx context.Context, name string) (*domain.Member, error) {
	m, err := t.d.dir.FindByName(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (t *Turn) findByPhone(ctx context.Context, stored string) (*domain.Member, error) {
	m, err := t.d.dir.FindByPhone(ctx, stored)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// roleGrant builds the add/update handler for one group. An admin sender
// names both member and phone; anyone else is self-registering and gets a
// pending inactive record that an admin must activate.
func roleGrant(g domain.Group) HandlerFunc {
	return func(ctx context.Context, t *Turn, cmd Command) error {
		if t.Sender == nil || !t.Sender.Admin {
			return selfRegister(ctx, t, cmd, g)
		}
		return adminGrant(ctx, t, cmd, g)
	}
}

func selfRegister(ctx context.Context, t *Turn, cmd Command, g domain.Group) error {
	nam := cmd.NameArg()
	if nam == "" {
		return core.Validationf("Invalid syntax for +%s. Usage: +%s name phone", g, g)
	}
	if other, err := t.findByName(ctx, nam); err != nil {
		return err
	} else if other != nil {
		return core.Conflictf("Already have an entry with that name")
	}
	stored := phone.StripUS(t.FromWire)
	if other, err := t.findByPhone(ctx, stored); err != nil {
		return err
	} else if other != nil {
		return core.Conflictf("That telephone number is associated with %s", other.Name)
	}
	m, err := domain.NewMember(nam, stored)
	if err != nil {
		return core.Validationf("%s", err)
	}
	m.SetRole(g)
	m.Active = false
	if err := t.d.dir.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert %s: %w", nam, err)
	}
	t.reply(ctx, fmt.Sprintf("%s added as %s with phone number %s. Requires activation", nam, g, t.FromWire))
	admins, err := t.d.dir.ListByRole(ctx, "admin")
	if err != nil {
		return fmt.Errorf("admin query: %w", err)
	}
	for _, a := range admins {
		t.send(ctx, domain.Message{
			To:   phone.Display(a.PhoneNumber),
			Body: fmt.Sprintf("%s has been added to the %s list, please activate", nam, g.Label()),
			From: t.In.To,
		})
	}
	return nil
}

func adminGrant(ctx context.Context, t *Turn, cmd Command, g domain.Group) error {
	nam, phoneRaw := cmd.NameArg(), cmd.PhoneArg()
	if nam == "" || phoneRaw == "" {
		return core.Validationf("Invalid syntax for +%s. Usage: +%s name phone", g, g)
	}
	wire, err := phone.Normalize(phoneRaw)
	if err != nil {
		return core.Validationf("Could not parse phone number: %s", phoneRaw)
	}
	stored := phone.StripUS(wire)

	byName, err := t.findByName(ctx, nam)
	if err != nil {
		return err
	}
	byPhone, err := t.findByPhone(ctx, stored)
	if err != nil {
		return err
	}

	welcome := domain.Message{
		To:   wire,
		Body: fmt.Sprintf("You have been added to the StripCall %s list as %s", g.Label(), nam),
		From: t.In.To,
	}

	if byName != nil {
		if phone.Same(byName.PhoneNumber, stored) {
			// Name and number already match: idempotent role set.
			byName.SetRole(g)
			if err := t.d.dir.Upsert(ctx, byName); err != nil {
				return fmt.Errorf("upsert %s: %w", nam, err)
			}
			t.reply(ctx, fmt.Sprintf("%s with number %s is now a %s", nam, wire, g))
			t.send(ctx, welcome)
			return nil
		}
		if byPhone != nil {
			return core.Conflictf("That telephone number is associated with %s", byPhone.Name)
		}
		byName.PhoneNumber = stored
		byName.SetRole(g)
		if err := t.d.dir.Upsert(ctx, byName); err != nil {
			return fmt.Errorf("upsert %s: %w", nam, err)
		}
		t.reply(ctx, fmt.Sprintf("%s with new number %s is now a %s", nam, wire, g))
		t.send(ctx, welcome)
		return nil
	}

	if byPhone != nil {
		return core.Conflictf("That telephone number is associated with %s", byPhone.Name)
	}
	m, err := domain.NewMember(nam, stored)
	if err != nil {
		return core.Validationf("%s", err)
	}
	m.SetRole(g)
	m.Active = false
	if err := t.d.dir.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert %s: %w", nam, err)
	}
	t.reply(ctx, fmt.Sprintf("%s added as %s with phone number %s. Requires activation", nam, g, wire))
	t.send(ctx, welcome)
	return nil
}

// handleRef lets anyone claim a referee record keyed by name. The claimed
// name must not belong to a non-ref, and the sender's number must not
// already belong to someone else.
func handleRef(ctx context.Context, t *Turn, cmd Command) error {
	if len(cmd.Args) != 1 {
		return core.Validationf("Invalid syntax for +ref. Usage: +ref name")
	}
	nam := cmd.NameArg()
	stored := phone.StripUS(t.FromWire)

	byName, err := t.findByName(ctx, nam)
	if err != nil {
		return err
	}
	if byName != nil {
		if !byName.Ref {
			return core.Conflictf("Entry for %s exists but cannot be a ref", nam)
		}
		if phone.Same(byName.PhoneNumber, stored) {
			t.reply(ctx, fmt.Sprintf("Entry for %s is already present as a ref", nam))
			return nil
		}
		byName.PhoneNumber = stored
		if err := t.d.dir.Upsert(ctx, byName); err != nil {
			return fmt.Errorf("upsert ref %s: %w", nam, err)
		}
		t.reply(ctx, fmt.Sprintf("Phone number updated for ref %s", nam))
		return nil
	}

	byPhone, err := t.findByPhone(ctx, stored)
	if err != nil {
		return err
	}
	if byPhone != nil {
		return core.Conflictf("Phone number already in use with name %s", byPhone.Name)
	}
	m, err := domain.NewMember(nam, stored)
	if err != nil {
		return core.Validationf("%s", err)
	}
	m.MakeRef()
	if err := t.d.dir.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert ref %s: %w", nam, err)
	}
	t.reply(ctx, fmt.Sprintf("Ref entry created for %s", nam))
	return nil
}

// handleAddRef is the privileged form: an admin registers a ref by name and
// number, clearing any armorer/medic flags the number carried.
func handleAddRef(ctx context.Context, t *Turn, cmd Command) error {
	nam, phoneRaw := cmd.NameArg(), cmd.PhoneArg()
	if nam == "" || phoneRaw == "" {
		return core.Validationf("Invalid syntax for +addref. Usage: +addref name phone")
	}
	wire, err := phone.Normalize(phoneRaw)
	if err != nil {
		return core.Validationf("Could not parse phone number: %s", phoneRaw)
	}
	stored := phone.StripUS(wire)

	byPhone, err := t.findByPhone(ctx, stored)
	if err != nil {
		return err
	}
	if byPhone != nil {
		byPhone.MakeRef()
		if err := byPhone.Rename(nam); err != nil {
			return core.Validationf("%s", err)
		}
		if err := t.d.dir.Upsert(ctx, byPhone); err != nil {
			return fmt.Errorf("upsert ref %s: %w", nam, err)
		}
	} else {
		byName, err := t.findByName(ctx, nam)
		if err != nil {
			return err
		}
		if byName != nil {
			t.reply(ctx, fmt.Sprintf("%s already exists with phone number %s, replacing", nam, phone.Display(byName.PhoneNumber)))
			byName.PhoneNumber = stored
			byName.MakeRef()
			if err := t.d.dir.Upsert(ctx, byName); err != nil {
				return fmt.Errorf("upsert ref %s: %w", nam, err)
			}
		} else {
			m, err := domain.NewMember(nam, stored)
			if err != nil {
				return core.Validationf("%s", err)
			}
			m.MakeRef()
			if err := t.d.dir.Upsert(ctx, m); err != nil {
				return fmt.Errorf("upsert ref %s: %w", nam, err)
			}
		}
	}
	t.reply(ctx, fmt.Sprintf("%s added as ref with phone number %s", nam, wire))
	t.send(ctx, domain.Message{
		To:   wire,
		Body: fmt.Sprintf("You have been added to the StripCall ref list as %s", nam),
		From: t.In.To,
	})
	return nil
}

func handleRemove(ctx context.Context, t *Turn, cmd Command) error {
	if len(cmd.Args) != 1 {
		return core.Validationf("Invalid syntax for +remove. Usage: +remove name")
	}
	nam := cmd.NameArg()
	m, err := t.findByName(ctx, nam)
	if err != nil {
		return err
	}
	if m == nil {
		return core.NotFoundf("No record found with name %q", nam)
	}
	if err := t.d.dir.Delete(ctx, m); err != nil {
		return fmt.Errorf("delete %s: %w", nam, err)
	}
	wire := phone.Display(m.PhoneNumber)
	t.reply(ctx, fmt.Sprintf("%s with phone number %s was deleted from the database", m.Name, wire))

	list := "database"
	switch {
	case m.Medic:
		list = "medic list"
	case m.Armorer:
		list = "armorer list"
	case m.NatOffice:
		list = "natOffice list"
	}
	t.send(ctx, domain.Message{
		To:   wire,
		Body: fmt.Sprintf("%s, you have been removed from the active strip call %s. You will be added back at the next tournament you work", m.Name, list),
		From: t.In.To,
	})
	return nil
}

// setActive builds the activate/deactivate handler pair. Zero arguments
// targets the sender; one argument targets a named member.
func setActive(active bool) HandlerFunc {
	verb := "deactivated"
	if active {
		verb = "activated"
	}
	return func(ctx context.Context, t *Turn, cmd Command) error {
		switch len(cmd.Args) {
		case 0:
			t.Sender.Active = active
			if err := t.d.dir.Upsert(ctx, t.Sender); err != nil {
				return fmt.Errorf("upsert self: %w", err)
			}
			t.reply(ctx, fmt.Sprintf("Your account has been %s.", verb))
			return nil
		case 1:
			nam := cmd.NameArg()
			m, err := t.findByName(ctx, nam)
			if err != nil {
				return err
			}
			if m == nil {
				return core.NotFoundf("User '%s' not found.", nam)
			}
			m.Active = active
			if err := t.d.dir.Upsert(ctx, m); err != nil {
				return fmt.Errorf("upsert %s: %w", nam, err)
			}
			t.reply(ctx, fmt.Sprintf("Account for %s has been %s.", nam, verb))
			return nil
		default:
			return core.Validationf("Invalid syntax for +%s. Usage: +%s [name]", cmd.Name, cmd.Name)
		}
	}
}

func setAdmin(grant bool) HandlerFunc {
	return func(ctx context.Context, t *Turn, cmd Command) error {
		if len(cmd.Args) != 1 {
			return core.Validationf("Invalid syntax for +%s. Usage: +%s name", cmd.Name, cmd.Name)
		}
		nam := cmd.NameArg()
		m, err := t.findByName(ctx, nam)
		if err != nil {
			return err
		}
		if m == nil {
			return core.NotFoundf("No record found with name %q", nam)
		}
		m.Admin = grant
		if err := t.d.dir.Upsert(ctx, m); err != nil {
			return fmt.Errorf("upsert %s: %w", nam, err)
		}
		if grant {
			t.reply(ctx, fmt.Sprintf("%s is now an admin", nam))
			t.send(ctx, domain.Message{To: phone.Display(m.PhoneNumber), Body: "you are now an admin", From: t.In.To})
		} else {
			t.reply(ctx, fmt.Sprintf("%s is no longer an admin", nam))
			t.send(ctx, domain.Message{To: phone.Display(m.PhoneNumber), Body: "you are no longer an admin", From: t.In.To})
		}
		return nil
	}
}

func handleList(ctx context.Context, t *Turn, cmd Command) error {
	if len(cmd.Args) > 1 {
		return core.Validationf("Invalid syntax for +list. Usage: +list [group]")
	}
	role := "armorer"
	if len(cmd.Args) == 1 {
		role = strings.ToLower(cmd.Args[0])
		switch role {
		case "armorer", "medic", "natoffice", "ref":
		default:
			return core.Validationf("Invalid group specified: %s. Use medic, armorer, natoffice, or ref", cmd.Args[0])
		}
	}
	members, err := t.d.dir.ListByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("list %s: %w", role, err)
	}
	if len(members) == 0 {
		t.reply(ctx, fmt.Sprintf("No entries found for %s.", role))
		return nil
	}
	entries := make([]string, 0, len(members))
	for _, m := range members {
		entries = append(entries, fmt.Sprintf("%s %s", m.Name, m.PhoneNumber))
	}
	// Long lists are split into SMS-sized messages rather than one
	// oversized body.
	r := strings.Join(entries, ", ")
	limit := t.d.cfg.SmsChunkLimit
	for len(r) > limit {
		t.reply(ctx, r[:limit])
		r = r[limit:]
	}
	t.reply(ctx, r)
	return nil
}

func handleUser(ctx context.Context, t *Turn, cmd Command) error {
	if len(cmd.Args) != 1 {
		return core.Validationf("Invalid syntax for +user. Usage: +user name")
	}
	nam := cmd.NameArg()
	m, err := t.findByName(ctx, nam)
	if err != nil {
		return err
	}
	if m == nil {
		return core.NotFoundf("User '%s' not found.", nam)
	}
	var roles []string
	for _, r := range []struct {
		set  bool
		name string
	}{
		{m.Admin, "admin"}, {m.Super, "super"}, {m.Armorer, "armorer"},
		{m.Medic, "medic"}, {m.NatOffice, "natoffice"}, {m.Ref, "ref"},
	} {
		if r.set {
			roles = append(roles, r.name)
		}
	}
	t.reply(ctx, fmt.Sprintf("Details for %s:\nphone: %s\nroles: %s\nactive: %t",
		m.Name, phone.Display(m.PhoneNumber), strings.Join(roles, ", "), m.Active))
	return nil
}

// quickReply resolves reply buffer slot n to a recent outside sender: the
// stripped body goes to that number directly and is also broadcast to the
// addressed group so everyone sees both sides of the exchange.
func quickReply(n int) HandlerFunc {
	return func(ctx context.Context, t *Turn, cmd Command) error {
		buf, err := t.d.buffers.Load(ctx, t.Group)
		if err != nil {
			return fmt.Errorf("reply buffer load: %w", err)
		}
		stored := buf.Slot(n)
		if stored == "" {
			return core.NotFoundf("No phone number stored for index %d in the contact list.", n)
		}
		if cmd.Rest == "" {
			return core.Validationf("Message body is empty after removing the command.")
		}
		t.send(ctx, domain.Message{To: phone.Display(stored), Body: cmd.Rest, From: t.In.To})
		t.d.sendToGroup(ctx, t, t.Identity(), t.Group, cmd.Rest, phone.StripUS(t.FromWire))
		return nil
	}
}

func handleResetBuffer(ctx context.Context, t *Turn, _ Command) error {
	if err := t.d.buffers.Save(ctx, domain.NewReplyBuffer(t.Group)); err != nil {
		return fmt.Errorf("reply buffer reset: %w", err)
	}
	t.reply(ctx, fmt.Sprintf("Reply buffer reset for %s", t.Group))
	return nil
}

// handleCapture controls the single system-wide capture session.
// Starting resets the addressed group's reply buffer so every fixture
// begins from the same buffer state; stopping folds the recorded events
// into a fixture, replies with its YAML, and clears the session.
func handleCapture(ctx context.Context, t *Turn, cmd Command) error {
	switch strings.ToLower(cmd.NameArg()) {
	case "start":
		if len(cmd.Args) != 2 {
			return core.Validationf("Invalid syntax for +capture. Usage: +capture start name | +capture stop")
		}
		if err := t.d.buffers.Save(ctx, domain.NewReplyBuffer(t.Group)); err != nil {
			return fmt.Errorf("reply buffer reset: %w", err)
		}
		sess := &core.CaptureSession{Active: true, Name: cmd.Args[1]}
		if err := t.d.captures.Save(ctx, sess); err != nil {
			return fmt.Errorf("capture session save: %w", err)
		}
		t.session = sess
		t.sessionDirty = false
		t.reply(ctx, fmt.Sprintf("Capture started: %s", sess.Name))
		return nil
	case "stop":
		if t.session == nil || !t.session.Active {
			return core.Validationf("No capture session is active")
		}
		fixture := capture.Fold(t.session.Name, t.session.Events)
		data, err := fixture.Marshal()
		if err != nil {
			return fmt.Errorf("capture serialize: %w", err)
		}
		if err := t.d.captures.Clear(ctx); err != nil {
			return fmt.Errorf("capture session clear: %w", err)
		}
		t.session = nil
		t.sessionDirty = false
		t.reply(ctx, string(data))
		return nil
	default:
		return core.Validationf("Invalid syntax for +capture. Usage: +capture start name | +capture stop")
	}
}
