package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare ten digits", raw: "2025551212", want: "+12025551212"},
		{name: "already wire format", raw: "+12025551212", want: "+12025551212"},
		{name: "hyphenated", raw: "202-555-1212", want: "+12025551212"},
		{name: "parenthesized with spaces", raw: "(202) 555-1212", want: "+12025551212"},
		{name: "international passes through", raw: "+447911123456", want: "+447911123456"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "eleven digits without plus", raw: "12025551212", wantErr: true},
		{name: "letters", raw: "202555abcd", wantErr: true},
		{name: "plus with letters", raw: "+1202555abcd", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "separators only", raw: "() -", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripUS(t *testing.T) {
	assert.Equal(t, "2025551212", StripUS("+12025551212"))
	assert.Equal(t, "+447911123456", StripUS("+447911123456"))
	// Already stored form passes through untouched.
	assert.Equal(t, "2025551212", StripUS("2025551212"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "+12025551212", Display("2025551212"))
	assert.Equal(t, "+447911123456", Display("+447911123456"))
	assert.Equal(t, "+12025551212", Display("+12025551212"))
}

func TestStripAndDisplayRoundTrip(t *testing.T) {
	for _, wire := range []string{"+12025551212", "+17246122359"} {
		assert.Equal(t, wire, Display(StripUS(wire)))
	}
}

func TestSame(t *testing.T) {
	assert.True(t, Same("2025551212", "+12025551212"))
	assert.True(t, Same("+12025551212", "2025551212"))
	assert.True(t, Same("2025551212", "2025551212"))
	assert.False(t, Same("2025551212", "2025551213"))
	assert.False(t, Same("+447911123456", "2025551212"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("202-555-1212"))
	assert.False(t, Valid("nope"))
}
