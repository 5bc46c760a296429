package app

import "github.com/brtech99/stripcalls/internal/core"

// requirement is one row of the authorization matrix: a predicate over the
// sender for a given parsed command. A nil sender is a guest and fails
// every privileged predicate.
type requirement func(t *Turn, cmd Command) error

func anyone(*Turn, Command) error { return nil }

// member requires any existing directory record, no role needed.
func member(t *Turn, _ Command) error {
	if t.Sender == nil {
		return core.NotAuthorized()
	}
	return nil
}

// privileged requires admin or super.
func privileged(t *Turn, _ Command) error {
	if t.Sender == nil || !t.Sender.Privileged() {
		return core.NotAuthorized()
	}
	return nil
}

// superOnly requires the super flag.
func superOnly(t *Turn, _ Command) error {
	if t.Sender == nil || !t.Sender.Super {
		return core.NotAuthorized()
	}
	return nil
}

// groupMember requires membership in the addressed group, or admin/super.
func groupMember(t *Turn, _ Command) error {
	if t.Sender == nil || !(t.Sender.HasRole(t.Group) || t.Sender.Privileged()) {
		return core.NotAuthorized()
	}
	return nil
}

// selfOrPrivileged gates activate/deactivate: the zero-argument form
// targets the sender and only needs an existing record, the named form
// needs admin or super.
func selfOrPrivileged(t *Turn, cmd Command) error {
	if len(cmd.Args) == 0 {
		return member(t, cmd)
	}
	return privileged(t, cmd)
}

// authMatrix maps command names to their requirement. Role-grant commands
// are open because a non-admin request is a self-registration, which the
// handler turns into a pending inactive record.
var authMatrix = map[string]requirement{
	"help":       anyone,
	"status":     anyone,
	"armorer":    anyone,
	"medic":      anyone,
	"natoffice":  anyone,
	"ref":        anyone,
	"addref":     privileged,
	"remove":     privileged,
	"list":       privileged,
	"user":       privileged,
	"activate":   selfOrPrivileged,
	"deactivate": selfOrPrivileged,
	"admin":      superOnly,
	"deadmin":    superOnly,
	"1":          groupMember,
	"2":          groupMember,
	"3":          groupMember,
	"4":          groupMember,
	"resetcbp":   privileged,
	"capture":    privileged,
}

// authorize evaluates the matrix row for a command. Unknown commands pass
// here and fall through to the bad-command reply in dispatch.
func authorize(t *Turn, cmd Command) error {
	req, ok := authMatrix[cmd.Name]
	if !ok {
		return nil
	}
	return req(t, cmd)
}
