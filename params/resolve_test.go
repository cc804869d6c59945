package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexOfToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fb", "fb"},
		{"xfr", "xfr"},
		{"1ma", "1ma"},
		{"4po", "4po"},
		{"g55z", "g55z"},
		{"sr00", "sr00"},
		{"si", "si"},
		{"?", "?"},
		{"sys", "sys"},
		{"x", "x"},
	}
	for _, tt := range tests {
		i, err := IndexOfToken(tt.in)
		require.NoError(t, err, "token %q", tt.in)
		assert.Equal(t, tt.want, table[i].Token, "token %q", tt.in)
	}
}

func TestIndexOfTokenRejectsPrefixes(t *testing.T) {
	// "sr" must resolve to the status report action, never to slot sr00
	i, err := IndexOfToken("sr")
	require.NoError(t, err)
	assert.Equal(t, "sr", table[i].Token)

	_, err = IndexOfToken("xf") // prefix of xfr, not a token
	assert.ErrorIs(t, err, ErrUnrecognized)

	_, err = IndexOfToken("")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestIndexOfFriendlyNames(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x_feed", "xfr"}, // unambiguous name prefix
		{"x_feedrate_maximum", "xfr"},
		{"firmware_b", "fb"},
		{"junction_accel", "ja"},
		{"m1_microsteps", "1mi"},
		{"g54_x_offset", "g54x"},
		{"qm", "?"},
	}
	for _, tt := range tests {
		i, err := IndexOf(tt.in)
		require.NoError(t, err, "name %q", tt.in)
		assert.Equal(t, tt.want, table[i].Token, "name %q", tt.in)
	}
}

// Resolution is deterministic: every descriptor's own token and full name
// resolve back to that descriptor.
func TestResolutionRoundTrip(t *testing.T) {
	for i := range table {
		j, err := IndexOfToken(table[i].Token)
		require.NoError(t, err)
		assert.Equal(t, i, j, "token %q", table[i].Token)

		j, err = IndexOf(table[i].Name)
		require.NoError(t, err)
		assert.Equal(t, table[i].Name, table[j].Name, "name %q", table[i].Name)
	}
}

func TestIndexOfUnrecognized(t *testing.T) {
	for _, in := range []string{"zzz", "x_bogus", "5ma", "g60x"} {
		_, err := IndexOf(in)
		assert.ErrorIs(t, err, ErrUnrecognized, "input %q", in)
	}
}

func TestGroupOf(t *testing.T) {
	tests := []struct {
		tok  string
		want byte
	}{
		{"xfr", 'x'},
		{"1ma", '1'},
		{"czo", 'c'},
		{"ja", 'g'},
		{"g54x", 'g'},
	}
	for _, tt := range tests {
		i, err := IndexOfToken(tt.tok)
		require.NoError(t, err)
		assert.Equal(t, tt.want, GroupOf(i), "token %q", tt.tok)
	}
}
