// Package phone normalizes telephone numbers at the wire/storage boundary.
//
// The directory stores US numbers without the "+1" prefix while the SMS
// provider speaks E.164. Handlers compare stored against wire-format numbers,
// so the asymmetry is part of the contract: Normalize at every inbound edge,
// StripUS before any store write, Display before any send.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadNumber = errors.New("unrecognized phone number format")

const usDigits = 10

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Normalize parses a raw phone string into wire format: bare 10-digit US
// numbers get a "+1" prefix, "+1"-prefixed US numbers pass through, other
// "+"-prefixed international numbers pass through verbatim. Common
// separators (hyphens, parentheses, whitespace) are stripped first.
func Normalize(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', '(', ')', ' ', '\t':
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrBadNumber, raw)
	}
	if strings.HasPrefix(cleaned, "+") {
		if strings.HasPrefix(cleaned, "+1") && len(cleaned) == usDigits+2 && digitsOnly(cleaned[1:]) {
			return cleaned, nil
		}
		if digitsOnly(cleaned[1:]) {
			return cleaned, nil
		}
		return "", fmt.Errorf("%w: %q", ErrBadNumber, raw)
	}
	if len(cleaned) == usDigits && digitsOnly(cleaned) {
		return "+1" + cleaned, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadNumber, raw)
}

// Valid reports whether raw normalizes to a well-formed number.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// StripUS converts a wire-format number to the storage form: "+1" is dropped
// from US numbers, everything else is stored as-is.
func StripUS(e164 string) string {
	if strings.HasPrefix(e164, "+1") && len(e164) == usDigits+2 && digitsOnly(e164[1:]) {
		return e164[2:]
	}
	return e164
}

// Display converts a stored number back to wire format for outgoing
// messages and user-facing text.
func Display(stored string) string {
	if len(stored) == usDigits && digitsOnly(stored) {
		return "+1" + stored
	}
	return stored
}

// Same reports whether two numbers refer to the same line regardless of
// which form each is in.
func Same(a, b string) bool {
	return Display(StripUS(a)) == Display(StripUS(b))
}
