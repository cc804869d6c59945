package params

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocon/machine"
)

func TestParseForms(t *testing.T) {
	tests := []struct {
		line  string
		token string
		typ   ValueType
		value float64
	}{
		{"$xfr=200.5", "xfr", TypeFloat, 200.5},
		{"xfr=200.5", "xfr", TypeFloat, 200.5},   // leading $ optional
		{"$XFR=200.5", "xfr", TypeFloat, 200.5},  // case-insensitive
		{"$xfr 200.5", "xfr", TypeFloat, 200.5},  // space separator
		{"$xfr:200.5", "xfr", TypeFloat, 200.5},  // colon separator
		{"$xfr\t200.5", "xfr", TypeFloat, 200.5}, // tab separator
		{"$xfr = 200.5", "xfr", TypeFloat, 200.5},
		{"$xfr=200.5 trailing junk", "xfr", TypeFloat, 200.5},
		{"$xfr", "xfr", TypeNull, 0}, // no value means query
		{"$x", "x", TypeParent, 0},   // group names parse as parents
		{"$x=5", "x", TypeParent, 0}, // even with a value
		{"$", "sys", TypeParent, 0},  // bare $ queries the system group
		{"$gpl=1", "gpl", TypeFloat, 1},
	}
	e := newTestEngine(nil, Collaborators{})
	for _, tt := range tests {
		l := NewList()
		i, err := e.Parse(tt.line, l)
		require.NoError(t, err, "line %q", tt.line)
		h := l.Head()
		assert.Equal(t, tt.token, h.Token, "line %q", tt.line)
		assert.Equal(t, i, h.Index, "line %q", tt.line)
		assert.Equal(t, tt.typ, h.Type, "line %q", tt.line)
		if tt.typ == TypeFloat {
			assert.Equal(t, tt.value, h.Value, "line %q", tt.line)
		}
	}
}

func TestParseGcodePayloadVerbatim(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	_, err := e.Parse("$gc=g0 x10 y20", l)
	require.NoError(t, err)
	assert.Equal(t, TypeString, l.Head().Type)
	assert.Equal(t, "g0 x10 y20", l.Head().String)
}

func TestParseErrors(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})

	l := NewList()
	_, err := e.Parse("$zzz=5", l)
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestParseUnparseableValueIsQuery(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.set.Axes[machine.AxisX].FeedrateMax = 800

	l := NewList()
	i, err := e.Parse("$xfr=abc", l)
	require.NoError(t, err)
	assert.Equal(t, TypeNull, l.Head().Type)

	// Exec treats it as a read: the stored value survives
	require.NoError(t, e.Exec("$xfr=abc"))
	assert.Equal(t, 800.0, e.set.Axes[machine.AxisX].FeedrateMax)
	assert.Equal(t, mustIndex(t, "xfr"), i)
}

func TestExecSetPersistsAndPrints(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Exec("$xvm=600"))
	assert.Equal(t, 600.0, e.set.Axes[machine.AxisX].VelocityMax)
	assert.Contains(t, out.String(), "[xvm]")

	v, err := e.store.ReadValue(mustIndex(t, "xvm"))
	require.NoError(t, err)
	assert.Equal(t, 600.0, v)
}

func TestExecQueryPrintsWithoutWriting(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Exec("$xvm"))
	assert.Contains(t, out.String(), "[xvm]")

	v, err := e.store.ReadValue(mustIndex(t, "xvm"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "a query must not touch the store")
}

func TestExecInchSetPersistsMillimeters(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.state.UnitsMode = machine.UnitsInch

	require.NoError(t, e.Exec("$xvm=10"))
	v, err := e.store.ReadValue(mustIndex(t, "xvm"))
	require.NoError(t, err)
	assert.InDelta(t, 254.0, v, 1e-9, "persisted values are always millimeters")
}

func TestExecGroupQueryPrintsChildren(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Exec("$1"))
	assert.Contains(t, out.String(), "[1ma]")
	assert.Contains(t, out.String(), "[1pm]")
}

func TestExecListAll(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Exec("$$"))
	for _, want := range []string{"[fv]", "[xvm]", "[1ma]", "[g54x]", "[ee]"} {
		assert.Contains(t, out.String(), want)
	}
}
