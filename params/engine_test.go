package params

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocon/machine"
	"mocon/nvm"
)

type fakeStepper struct {
	micro map[int]uint8
	polar map[int]uint8
}

func newFakeStepper() *fakeStepper {
	return &fakeStepper{micro: map[int]uint8{}, polar: map[int]uint8{}}
}

func (f *fakeStepper) SetMicrosteps(m int, v uint8) { f.micro[m] = v }
func (f *fakeStepper) SetPolarity(m int, v uint8)   { f.polar[m] = v }

type fakeSerial struct{ opts map[string]bool }

func newFakeSerial() *fakeSerial             { return &fakeSerial{opts: map[string]bool{}} }
func (f *fakeSerial) SetIgnoreCR(on bool)    { f.opts["ic"] = on }
func (f *fakeSerial) SetIgnoreLF(on bool)    { f.opts["il"] = on }
func (f *fakeSerial) SetAppendCR(on bool)    { f.opts["ec"] = on }
func (f *fakeSerial) SetEcho(on bool)        { f.opts["ee"] = on }
func (f *fakeSerial) SetFlowControl(on bool) { f.opts["ex"] = on }

type fakeMotion struct {
	vel  float64
	mach [machine.Axes]float64
	work [machine.Axes]float64
}

func (f *fakeMotion) RuntimeVelocity() float64 { return f.vel }
func (f *fakeMotion) MachinePosition(a int) float64 {
	return f.mach[a]
}
func (f *fakeMotion) WorkPosition(a int) float64 { return f.work[a] }

type fakeGcode struct {
	got  string
	resp string
	err  error
}

func (f *fakeGcode) Run(block string) (string, error) {
	f.got = block
	return f.resp, f.err
}

type fakeReport struct{ runs int }

func (f *fakeReport) Run() error { f.runs++; return nil }

func newTestEngine(out io.Writer, co Collaborators) *Engine {
	if out == nil {
		out = io.Discard
	}
	e := New(machine.NewSettings(), machine.NewState(), nvm.NewMem(Count()), out, io.Discard, co)
	e.applyDefaults()
	return e
}

func mustIndex(t *testing.T, name string) int {
	t.Helper()
	i, err := IndexOf(name)
	require.NoError(t, err)
	return i
}

func TestSetGetRoundTrip(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	require.NoError(t, e.Apply("xfr", 1234.5))

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "xfr"), &c))
	assert.Equal(t, 1234.5, c.Value)
	assert.Equal(t, TypeFloat, c.Type)
	assert.Equal(t, 1234.5, e.set.Axes[machine.AxisX].FeedrateMax)
}

func TestLinearUnitConversionIsInverse(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.state.UnitsMode = machine.UnitsInch

	require.NoError(t, e.Apply("xvm", 10))
	assert.InDelta(t, 254.0, e.set.Axes[machine.AxisX].VelocityMax, 1e-9,
		"stored value must be millimeters")

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "xvm"), &c))
	assert.InDelta(t, 10.0, c.Value, 1e-9, "reported value must be inches")

	e.state.UnitsMode = machine.UnitsMM
	require.NoError(t, e.GetInto(mustIndex(t, "xvm"), &c))
	assert.InDelta(t, 254.0, c.Value, 1e-9)
}

func TestRotaryValuesNeverConvert(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.state.UnitsMode = machine.UnitsInch

	require.NoError(t, e.Apply("afr", 9000))
	assert.Equal(t, 9000.0, e.set.Axes[machine.AxisA].FeedrateMax)

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "afr"), &c))
	assert.Equal(t, 9000.0, c.Value)
}

func TestStatusIntervalClampAndTicks(t *testing.T) {
	tests := []struct {
		in      float64
		wantMS  float64
		wantTik uint8
	}{
		{5, 30, 6},        // clamped up to the minimum
		{42, 45, 9},       // rounded up to a whole tick
		{100, 100, 20},    // exact
		{5000, 1000, 200}, // clamped down to the maximum
	}
	for _, tt := range tests {
		e := newTestEngine(nil, Collaborators{})
		require.NoError(t, e.Apply("si", tt.in))
		assert.Equal(t, tt.wantTik, e.set.StatusIntervalTicks, "input %v", tt.in)

		var c CmdObj
		require.NoError(t, e.GetInto(mustIndex(t, "si"), &c))
		assert.Equal(t, tt.wantMS, c.Value, "input %v", tt.in)
	}
}

func TestStepsPerUnitRecompute(t *testing.T) {
	st := newFakeStepper()
	e := newTestEngine(nil, Collaborators{Stepper: st})

	// defaults: 360 / (1.8 / 8) / 2.54
	assert.InDelta(t, 629.921259, e.set.Motors[0].StepsPerUnit, 1e-5)

	require.NoError(t, e.Apply("1mi", 4))
	assert.InDelta(t, 314.960629, e.set.Motors[0].StepsPerUnit, 1e-5)
	assert.Equal(t, uint8(4), st.micro[0], "driver must see the new microstep setting")

	require.NoError(t, e.Apply("2tr", 5.08))
	assert.InDelta(t, 314.960629, e.set.Motors[1].StepsPerUnit, 1e-5)

	require.NoError(t, e.Apply("3po", 1))
	assert.Equal(t, uint8(1), st.polar[2])
}

func TestSerialOptionToggles(t *testing.T) {
	fs := newFakeSerial()
	e := newTestEngine(nil, Collaborators{Serial: fs})

	for _, tok := range []string{"ic", "il", "ec", "ee", "ex"} {
		require.NoError(t, e.Apply(tok, 1))
		assert.True(t, fs.opts[tok], "option %s", tok)
		require.NoError(t, e.Apply(tok, 0))
		assert.False(t, fs.opts[tok], "option %s", tok)
	}
	require.NoError(t, e.Apply("ee", 1))
	assert.Equal(t, uint8(1), e.set.EnableEcho, "stored flag tracks the toggle")
}

func TestU8SetTruncates(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	require.NoError(t, e.Apply("gpl", 2.7))
	assert.Equal(t, uint8(2), e.set.SelectPlane)
}

func TestWriteProtectedParameters(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	was := e.set.FirmwareBuild
	require.NoError(t, e.Apply("fb", 999))
	assert.Equal(t, was, e.set.FirmwareBuild)
}

func TestAxisGroupExpansion(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	require.NoError(t, e.Get(mustIndex(t, "x"), l))

	assert.Equal(t, TypeParent, l.Head().Type)
	var toks []string
	for _, c := range l.Children() {
		toks = append(toks, c.Token)
	}
	assert.Equal(t,
		[]string{"am", "fr", "vm", "tm", "jm", "jd", "sm", "sv", "lv", "zo", "abs", "pos"},
		toks)

	// indices ascend and values are populated
	prev := -1
	for _, c := range l.Children() {
		assert.Greater(t, c.Index, prev)
		prev = c.Index
	}
}

func TestMotorGroupExpansion(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	require.NoError(t, e.Get(mustIndex(t, "1"), l))

	var toks []string
	for _, c := range l.Children() {
		toks = append(toks, c.Token)
	}
	assert.Equal(t, []string{"ma", "sa", "tr", "mi", "po", "pm"}, toks)
}

func TestSysGroupExpansion(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	require.NoError(t, e.Get(mustIndex(t, "sys"), l))

	got := map[string]bool{}
	for _, c := range l.Children() {
		got[c.Token] = true // membership groups keep full tokens
	}
	for _, tok := range []string{"fv", "fb", "si", "gpl", "gun", "gco", "gpa", "gdi",
		"ea", "ja", "ml", "ma", "mt", "ic", "il", "ec", "ee", "ex"} {
		assert.True(t, got[tok], "sys group missing %s", tok)
	}
	assert.Len(t, got, 18)
}

func TestQueryGroupExpansion(t *testing.T) {
	mo := &fakeMotion{work: [machine.Axes]float64{1, 2, 3, 4, 5, 6}}
	e := newTestEngine(nil, Collaborators{Motion: mo})
	l := NewList()
	require.NoError(t, e.Get(mustIndex(t, "?"), l))

	require.Len(t, l.Children(), 7) // stat plus six positions
	assert.Equal(t, "stat", l.Children()[0].Token)
	assert.Equal(t, 1.0, l.Children()[1].Value) // xpos
	assert.Equal(t, 6.0, l.Children()[6].Value) // cpos
}

func TestGroupExpansionIsIdempotent(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	a, b := NewList(), NewList()
	i := mustIndex(t, "z")
	require.NoError(t, e.Get(i, a))
	require.NoError(t, e.Get(i, b))
	assert.Equal(t, a.Children(), b.Children())
}

func TestGroupSetDistributes(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	l.Head().Index = mustIndex(t, "g55")
	l.Head().Type = TypeParent

	ch, err := l.Append()
	require.NoError(t, err)
	ch.Index = mustIndex(t, "g55x")
	ch.Value = 12.5
	ch.Type = TypeFloat

	require.NoError(t, e.Set(l.Head().Index, l))
	e.persistAfterSet(l.Head().Index, l)
	assert.Equal(t, 12.5, e.set.Offsets[1][machine.AxisX])

	// distributing the same child values again changes nothing, live or stored
	snap := *e.set
	stored, err := e.store.ReadValue(ch.Index)
	require.NoError(t, err)

	require.NoError(t, e.Set(l.Head().Index, l))
	e.persistAfterSet(l.Head().Index, l)
	assert.Equal(t, snap, *e.set)
	again, err := e.store.ReadValue(ch.Index)
	require.NoError(t, err)
	assert.Equal(t, stored, again)
}

func TestStatusReportVectorReplace(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.set.StatusReport[5] = 99 // stale slot that must be wiped

	srIdx := mustIndex(t, "sr")
	l := NewList()
	l.Head().Index = srIdx

	lineIdx := mustIndex(t, "line")
	posIdx := mustIndex(t, "xpos")

	for _, spec := range []struct {
		idx   int
		value float64
	}{{lineIdx, 1}, {posIdx, 1}, {mustIndex(t, "ypos"), 0}} {
		ch, err := l.Append()
		require.NoError(t, err)
		ch.Index = spec.idx
		ch.Value = spec.value
		ch.Type = TypeFloat
	}

	require.NoError(t, e.Set(srIdx, l))
	assert.Equal(t, uint32(lineIdx), e.set.StatusReport[0])
	assert.Equal(t, uint32(posIdx), e.set.StatusReport[1])
	assert.Equal(t, uint32(0), e.set.StatusReport[2], "falsy child leaves its slot empty")
	assert.Equal(t, uint32(0), e.set.StatusReport[5], "previous vector is discarded")
}

func TestStatusReportQueryRuns(t *testing.T) {
	fr := &fakeReport{}
	e := newTestEngine(nil, Collaborators{Report: fr})
	l := NewList()
	require.NoError(t, e.Get(mustIndex(t, "sr"), l))
	assert.Equal(t, 1, fr.runs)
}

func TestGcodeRunAndQuery(t *testing.T) {
	fg := &fakeGcode{resp: "ok"}
	e := newTestEngine(nil, Collaborators{Gcode: fg})

	require.NoError(t, e.Exec("$gc=g0 x10"))
	assert.Equal(t, "g0 x10", fg.got)
	assert.Equal(t, "ok", e.GcodeResponse())

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "gc"), &c))
	assert.Equal(t, "g0 x10", c.String)
	assert.Equal(t, TypeString, c.Type)
}

func TestVelocityConvertsPositionsDoNot(t *testing.T) {
	mo := &fakeMotion{vel: 254, mach: [machine.Axes]float64{25.4}}
	e := newTestEngine(nil, Collaborators{Motion: mo})
	e.state.UnitsMode = machine.UnitsInch

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "vel"), &c))
	assert.InDelta(t, 10.0, c.Value, 1e-9)

	require.NoError(t, e.GetInto(mustIndex(t, "xabs"), &c))
	assert.Equal(t, 25.4, c.Value, "positions report native millimeters")
}

func TestMachineStateLabel(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	e.state.MachineState = machine.StateRun

	var c CmdObj
	require.NoError(t, e.GetInto(mustIndex(t, "stat"), &c))
	assert.Equal(t, "run", c.String)
	assert.Equal(t, float64(machine.StateRun), c.Value)
}

func TestPrintFormatting(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Print(mustIndex(t, "gpl")))
	assert.Contains(t, out.String(), "[gpl]")
	assert.Contains(t, out.String(), "gcode_select_plane")

	out.Reset()
	require.NoError(t, e.Print(mustIndex(t, "xvm")))
	assert.Contains(t, out.String(), " mm")

	out.Reset()
	e.state.UnitsMode = machine.UnitsInch
	require.NoError(t, e.Print(mustIndex(t, "xvm")))
	assert.Contains(t, out.String(), " in")

	out.Reset()
	require.NoError(t, e.Print(mustIndex(t, "1sa")))
	assert.Contains(t, out.String(), " deg", "rotary prints degrees in any units mode")
}

func TestPrintGroup(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&out, Collaborators{})

	require.NoError(t, e.Print(mustIndex(t, "1")))
	for _, want := range []string{"[1ma]", "[1sa]", "[1tr]", "[1mi]", "[1po]", "[1pm]"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestIndexBounds(t *testing.T) {
	e := newTestEngine(nil, Collaborators{})
	l := NewList()
	assert.ErrorIs(t, e.Get(-1, l), ErrIndexRange)
	assert.ErrorIs(t, e.Get(Count(), l), ErrIndexRange)
	assert.ErrorIs(t, e.Set(Count(), l), ErrIndexRange)
	assert.ErrorIs(t, e.Print(-1), ErrIndexRange)
}
