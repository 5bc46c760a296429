package domain

import "strings"

// Group is one of the three fixed broadcast groups. It is not persisted
// on its own; it keys into Member role flags and the per-group reply buffer.
type Group int

const (
	GroupArmorer Group = iota + 1
	GroupMedic
	GroupNatOffice
)

// Index is the 1-based buffer index used by the persisted glbvar records.
func (g Group) Index() int { return int(g) }

func (g Group) String() string {
	switch g {
	case GroupArmorer:
		return "armorer"
	case GroupMedic:
		return "medic"
	case GroupNatOffice:
		return "natoffice"
	}
	return "unknown"
}

// Label is the human form used in outgoing messages.
func (g Group) Label() string {
	if g == GroupNatOffice {
		return "National Office"
	}
	return g.String()
}

// ParseGroup resolves a group name as typed in commands like "+list medic".
func ParseGroup(s string) (Group, bool) {
	switch strings.ToLower(s) {
	case "armorer":
		return GroupArmorer, true
	case "medic":
		return GroupMedic, true
	case "natoffice":
		return GroupNatOffice, true
	}
	return 0, false
}

// Groups lists all groups in buffer-index order.
func Groups() []Group {
	return []Group{GroupArmorer, GroupMedic, GroupNatOffice}
}
