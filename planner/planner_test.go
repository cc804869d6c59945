package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocon/machine"
)

func newTestPlanner() *Planner {
	set := machine.NewSettings()
	for a := range set.Axes {
		set.Axes[a].AxisMode = 1
		set.Axes[a].VelocityMax = 800
		set.Axes[a].TravelMax = 400
	}
	set.JunctionAccel = 100000
	set.EnableAcceleration = 1
	return New(set, machine.NewState())
}

func TestQueueMoveAdvancesPosition(t *testing.T) {
	p := newTestPlanner()
	require.NoError(t, p.QueueMove([machine.Axes]float64{10, 20, 0, 0, 0, 0}, 600))

	assert.Equal(t, 10.0, p.MachinePosition(machine.AxisX))
	assert.Equal(t, 20.0, p.MachinePosition(machine.AxisY))
	assert.Equal(t, uint8(machine.StateRun), p.state.MachineState)
	assert.Greater(t, p.RuntimeVelocity(), 0.0)

	p.Finish()
	assert.Equal(t, 0.0, p.RuntimeVelocity())
	assert.Equal(t, uint8(machine.StateStop), p.state.MachineState)
}

func TestTravelLimit(t *testing.T) {
	p := newTestPlanner()
	err := p.QueueMove([machine.Axes]float64{500, 0, 0, 0, 0, 0}, 600)
	assert.ErrorIs(t, err, ErrTravelLimit)
	assert.Equal(t, 0.0, p.MachinePosition(machine.AxisX), "rejected moves must not advance")
}

func TestDisabledAxisHoldsPosition(t *testing.T) {
	p := newTestPlanner()
	p.set.Axes[machine.AxisZ].AxisMode = 0

	require.NoError(t, p.QueueMove([machine.Axes]float64{10, 0, 99, 0, 0, 0}, 600))
	assert.Equal(t, 0.0, p.MachinePosition(machine.AxisZ))
	assert.Equal(t, 10.0, p.MachinePosition(machine.AxisX))
}

func TestVelocityCappedByAxisMaximum(t *testing.T) {
	p := newTestPlanner()
	p.set.Axes[machine.AxisX].VelocityMax = 100

	m := &Move{Start: p.pos, End: [machine.Axes]float64{100, 0, 0, 0, 0, 0}, Feed: 600}
	m.Distance = 100
	p.profile(m)
	assert.InDelta(t, 100.0, m.CruiseVel, 1e-9)
}

func TestTrapezoidProfile(t *testing.T) {
	p := newTestPlanner()
	m := &Move{End: [machine.Axes]float64{100, 0, 0, 0, 0, 0}, Feed: 600, Distance: 100}
	p.profile(m)

	assert.InDelta(t, 600.0, m.CruiseVel, 1e-9, "long move reaches full feedrate")
	assert.Greater(t, m.CruiseTime, 0.0)
	assert.InDelta(t, m.AccelTime, m.DecelTime, 1e-12)
	assert.InDelta(t, m.Duration, m.AccelTime+m.CruiseTime+m.DecelTime, 1e-12)
}

func TestTriangleProfileOnShortMove(t *testing.T) {
	p := newTestPlanner()
	p.set.JunctionAccel = 10000 // gentle accel forces a triangle on a short move

	m := &Move{End: [machine.Axes]float64{1, 0, 0, 0, 0, 0}, Feed: 800, Distance: 1}
	p.profile(m)

	assert.Less(t, m.CruiseVel, 800.0, "short move cannot reach full feedrate")
	assert.Equal(t, 0.0, m.CruiseTime)
	assert.InDelta(t, m.AccelTime, m.DecelTime, 1e-12)
}

func TestWorkPositionOffsets(t *testing.T) {
	p := newTestPlanner()
	p.set.CoordSystem = 1 // G55
	p.set.Offsets[1][machine.AxisX] = 5

	require.NoError(t, p.QueueMove([machine.Axes]float64{30, 0, 0, 0, 0, 0}, 600))
	assert.Equal(t, 30.0, p.MachinePosition(machine.AxisX))
	assert.Equal(t, 25.0, p.WorkPosition(machine.AxisX))

	p.SetWorkPosition(machine.AxisX, 0)
	assert.Equal(t, 0.0, p.WorkPosition(machine.AxisX))
	assert.Equal(t, 30.0, p.MachinePosition(machine.AxisX), "origin shift never moves the machine")

	p.ClearOriginShift()
	assert.Equal(t, 25.0, p.WorkPosition(machine.AxisX))
}
