package controller

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocon/machine"
	"mocon/nvm"
	"mocon/params"
)

type duplex struct {
	in  strings.Reader
	out bytes.Buffer
}

func (d *duplex) Read(b []byte) (int, error)  { return d.in.Read(b) }
func (d *duplex) Write(b []byte) (int, error) { return d.out.Write(b) }

func newBooted(t *testing.T) (*Controller, *duplex) {
	t.Helper()
	d := &duplex{}
	c := New(d, nvm.NewMem(params.Count()), nil)
	require.NoError(t, c.Boot())
	d.out.Reset() // drop boot chatter
	return c, d
}

func TestBootMigratesAndSeedsStatusDefaults(t *testing.T) {
	store := nvm.NewMem(params.Count())
	c := New(&duplex{}, store, nil)
	require.NoError(t, c.Boot())

	stamp, err := store.ReadValue(0)
	require.NoError(t, err)
	assert.Equal(t, machine.FirmwareBuild, stamp)
	assert.NotZero(t, c.set.StatusReport[0], "first boot seeds the report slots")

	// second boot replays without reseeding
	c2 := New(&duplex{}, store, nil)
	require.NoError(t, c2.Boot())
	assert.Equal(t, c.set.StatusReport, c2.set.StatusReport)
}

func TestDispatchParameterCommands(t *testing.T) {
	c, d := newBooted(t)

	c.Dispatch("$xvm=600")
	assert.Contains(t, d.out.String(), "[xvm]")
	assert.Contains(t, d.out.String(), "ok")
	assert.Equal(t, 600.0, c.set.Axes[machine.AxisX].VelocityMax)

	d.out.Reset()
	c.Dispatch("$zzz")
	assert.Contains(t, d.out.String(), "err")
}

func TestDispatchGcode(t *testing.T) {
	c, d := newBooted(t)

	c.Dispatch("G1 X10 F600")
	assert.Contains(t, d.out.String(), "ok")
	assert.Equal(t, 10.0, c.plan.MachinePosition(machine.AxisX))

	// the block is queryable afterwards
	d.out.Reset()
	c.Dispatch("$gc")
	assert.Equal(t, uint8(machine.StateRun), c.state.MachineState)
}

func TestDispatchGcodeError(t *testing.T) {
	c, d := newBooted(t)
	c.Dispatch("M104 S200")
	assert.Contains(t, d.out.String(), "error")
}

func TestStatusQueryEmitsReport(t *testing.T) {
	c, d := newBooted(t)
	c.Dispatch("$sr")
	assert.Contains(t, d.out.String(), "stat:")
}

func TestSerialOptionReachesTransport(t *testing.T) {
	c, d := newBooted(t)
	c.Dispatch("$ec=1")

	d.out.Reset()
	c.Dispatch("$fv")
	assert.Contains(t, d.out.String(), "\r\n", "CR append must be live on the next response")
}
