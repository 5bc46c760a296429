package app

import (
	"strings"

	"github.com/brtech99/stripcalls/internal/core"
)

// CommandMarker is the first byte that makes a message body a command.
const CommandMarker = '+'

// Command is a tokenized command body. Name is lower-cased without the
// marker; Args are the space-delimited tokens after it. Rest is the raw
// remainder after the command token, which the quick-reply handlers send
// on verbatim.
type Command struct {
	Name string
	Args []string
	Rest string
}

// IsCommand reports whether a body should go through the command path.
func IsCommand(body string) bool {
	return len(body) > 0 && body[0] == CommandMarker
}

// ParseCommand tokenizes a command body. A lone marker or an empty body is
// invalid input.
func ParseCommand(body string) (Command, error) {
	if !IsCommand(body) || strings.TrimSpace(body[1:]) == "" {
		return Command{}, core.Validationf("Bad command")
	}
	parts := strings.SplitN(strings.TrimSpace(body[1:]), " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) == 2 {
		cmd.Rest = strings.TrimSpace(parts[1])
		cmd.Args = strings.Fields(cmd.Rest)
	}
	return cmd, nil
}

// NameArg returns the name argument, the usual second token.
func (c Command) NameArg() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// PhoneArg joins the tokens after the name into one phone string, so
// "(202) 555-1212" style numbers that span two tokens survive
// tokenization.
func (c Command) PhoneArg() string {
	if len(c.Args) < 2 {
		return ""
	}
	return strings.Join(c.Args[1:], " ")
}
