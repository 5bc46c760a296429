package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// Kind classifies a ReplyError for tests and logging.
type Kind int

const (
	// KindValidation covers malformed phones and missing arguments.
	KindValidation Kind = iota
	// KindAuthorization is the fixed "not authorized" refusal.
	KindAuthorization
	// KindNotFound covers references to unknown names or numbers.
	KindNotFound
	// KindConflict covers names or numbers already claimed elsewhere.
	KindConflict
)

// ReplyError is a dispatch failure that maps to a single explanatory SMS
// back to the sender. No directory mutation happens before one is raised.
type ReplyError struct {
	Kind Kind
	// Body is the exact SMS text the sender receives.
	Body string
}

func (e *ReplyError) Error() string { return e.Body }

func Validationf(format string, args ...any) *ReplyError {
	return &ReplyError{Kind: KindValidation, Body: fmt.Sprintf(format, args...)}
}

func NotAuthorized() *ReplyError {
	return &ReplyError{Kind: KindAuthorization, Body: "You are not authorized for that command"}
}

func NotFoundf(format string, args ...any) *ReplyError {
	return &ReplyError{Kind: KindNotFound, Body: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *ReplyError {
	return &ReplyError{Kind: KindConflict, Body: fmt.Sprintf(format, args...)}
}
