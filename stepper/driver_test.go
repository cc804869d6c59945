package stepper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocon/machine"
)

func newTestDriver() *Driver {
	set := machine.NewSettings()
	for m := range set.Motors {
		set.Motors[m].Microsteps = 8
		set.Motors[m].StepsPerUnit = 100
	}
	return New(set)
}

func TestConfigPushes(t *testing.T) {
	d := newTestDriver()

	d.SetMicrosteps(0, 4)
	d.SetPolarity(1, 1)

	ch, err := d.State(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), ch.Microsteps)

	ch, err = d.State(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), ch.Polarity)

	// out-of-range pushes are ignored, not fatal
	d.SetMicrosteps(99, 2)
	d.SetPolarity(-1, 1)
}

func TestMoveToRoundTrip(t *testing.T) {
	d := newTestDriver()
	require.NoError(t, d.MoveTo(0, 12.5))
	assert.Equal(t, 12.5, d.Position(0))
}

func TestPolarityInvertsSteps(t *testing.T) {
	d := newTestDriver()
	d.SetPolarity(0, 1)
	require.NoError(t, d.MoveTo(0, 10))

	ch, err := d.State(0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), ch.position, "inverted channel steps negative")
	assert.Equal(t, 10.0, d.Position(0), "reported travel stays in machine terms")
}

func TestChannelRange(t *testing.T) {
	d := newTestDriver()
	assert.ErrorIs(t, d.MoveTo(4, 1), ErrChannelRange)
	assert.ErrorIs(t, d.Enable(-1, true), ErrChannelRange)
	_, err := d.State(4)
	assert.ErrorIs(t, err, ErrChannelRange)
}
