package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	m, err := NewMember("Alice", "2025551212")
	require.NoError(t, err)
	assert.Equal(t, "Alice", m.Name)
	assert.Equal(t, "ALICE", m.NameUpper)
	assert.Equal(t, "2025551212", m.PhoneNumber)
	assert.True(t, m.Active)
	assert.Empty(t, m.ID)

	_, err = NewMember("", "2025551212")
	assert.ErrorIs(t, err, ErrNameEmpty)

	_, err = NewMember(strings.Repeat("x", MaxNameLen+1), "2025551212")
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = NewMember("Alice", "")
	assert.ErrorIs(t, err, ErrPhoneEmpty)
}

func TestRenameKeepsLookupKeyInSync(t *testing.T) {
	m, err := NewMember("Alice", "2025551212")
	require.NoError(t, err)
	require.NoError(t, m.Rename("Bobby"))
	assert.Equal(t, "Bobby", m.Name)
	assert.Equal(t, "BOBBY", m.NameUpper)
	assert.ErrorIs(t, m.Rename(""), ErrNameEmpty)
}

func TestSetRole(t *testing.T) {
	tests := []struct {
		name      string
		group     Group
		wantRef   bool
		wantCheck func(m *Member) bool
	}{
		{"armorer clears ref", GroupArmorer, false, func(m *Member) bool { return m.Armorer }},
		{"medic clears ref", GroupMedic, false, func(m *Member) bool { return m.Medic }},
		{"natoffice keeps ref", GroupNatOffice, true, func(m *Member) bool { return m.NatOffice }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMember("Alice", "2025551212")
			require.NoError(t, err)
			m.Ref = true
			m.SetRole(tt.group)
			assert.True(t, tt.wantCheck(m))
			assert.Equal(t, tt.wantRef, m.Ref)
			assert.True(t, m.HasRole(tt.group))
		})
	}
}

func TestMakeRef(t *testing.T) {
	m, err := NewMember("Alice", "2025551212")
	require.NoError(t, err)
	m.Armorer = true
	m.Medic = true
	m.MakeRef()
	assert.True(t, m.Ref)
	assert.False(t, m.Armorer)
	assert.False(t, m.Medic)
}

func TestPrivileged(t *testing.T) {
	m, err := NewMember("Alice", "2025551212")
	require.NoError(t, err)
	assert.False(t, m.Privileged())
	m.Admin = true
	assert.True(t, m.Privileged())
	m.Admin = false
	m.Super = true
	assert.True(t, m.Privileged())
}

func TestParseGroup(t *testing.T) {
	g, ok := ParseGroup("MEDIC")
	require.True(t, ok)
	assert.Equal(t, GroupMedic, g)
	_, ok = ParseGroup("referee")
	assert.False(t, ok)
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "armorer", GroupArmorer.Label())
	assert.Equal(t, "National Office", GroupNatOffice.Label())
	assert.Equal(t, "natoffice", GroupNatOffice.String())
}
