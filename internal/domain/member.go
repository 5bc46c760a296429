// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxNameLen = 36

var (
	ErrNameEmpty   = errors.New("member name empty")
	ErrNameTooLong = errors.New("member name too long")
	ErrPhoneEmpty  = errors.New("member phone number empty")
)

// Member is one directory record: identity plus role flags.
// PhoneNumber is the storage form, a bare 10-digit US number without "+1"
// (international numbers keep their "+" prefix). NameUpper is the
// case-insensitive lookup key derived from Name.
type Member struct {
	// ID is the backing document key, assigned by the store on first
	// write. It is not part of the persisted record body.
	ID          string `firestore:"-"`
	PhoneNumber string `firestore:"phonNbr"`
	Name        string `firestore:"name"`
	NameUpper   string `firestore:"ucName"`
	Admin       bool   `firestore:"admin"`
	Super       bool   `firestore:"super"`
	Armorer     bool   `firestore:"armorer"`
	Medic       bool   `firestore:"medic"`
	NatOffice   bool   `firestore:"natOffice"`
	Ref         bool   `firestore:"ref"`
	Active      bool   `firestore:"active"`
}

// NewMember avoids raw literals in handlers and keeps construction obvious.
// NameUpper is always derived here, never set by callers.
func NewMember(name, phoneNumber string) (*Member, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if phoneNumber == "" {
		return nil, ErrPhoneEmpty
	}
	return &Member{
		PhoneNumber: phoneNumber,
		Name:        name,
		NameUpper:   strings.ToUpper(name),
		Active:      true,
	}, nil
}

// Rename updates Name and keeps NameUpper in sync.
func (m *Member) Rename(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	m.Name = name
	m.NameUpper = strings.ToUpper(name)
	return nil
}

// HasRole reports whether the flag backing the given group is set.
func (m *Member) HasRole(g Group) bool {
	switch g {
	case GroupArmorer:
		return m.Armorer
	case GroupMedic:
		return m.Medic
	case GroupNatOffice:
		return m.NatOffice
	}
	return false
}

// SetRole sets the flag backing the given group. Armorer and medic grants
// clear the ref flag; a national office grant leaves it alone.
func (m *Member) SetRole(g Group) {
	switch g {
	case GroupArmorer:
		m.Armorer = true
		m.Ref = false
	case GroupMedic:
		m.Medic = true
		m.Ref = false
	case GroupNatOffice:
		m.NatOffice = true
	}
}

// MakeRef sets the ref flag and clears armorer/medic, mirroring the
// promotion rules of the addref command.
func (m *Member) MakeRef() {
	m.Ref = true
	m.Armorer = false
	m.Medic = false
}

// Privileged reports admin or super.
func (m *Member) Privileged() bool {
	return m.Admin || m.Super
}
