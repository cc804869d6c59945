// Package planner turns target positions into velocity-profiled moves and
// tracks the live machine position the reporting parameters read from.
package planner

import (
	"errors"
	"math"

	"mocon/machine"
)

// ErrTravelLimit is returned when a move target exceeds an axis travel range.
var ErrTravelLimit = errors.New("planner: target exceeds travel maximum")

// Move is one planned motion segment with its trapezoidal profile.
type Move struct {
	Start    [machine.Axes]float64
	End      [machine.Axes]float64
	Feed     float64 // requested feedrate (mm/min)
	Distance float64 // euclidean length over the linear axes (mm)

	// profile results
	CruiseVel  float64 // velocity actually reached (mm/min)
	AccelTime  float64 // seconds
	CruiseTime float64 // seconds
	DecelTime  float64 // seconds
	Duration   float64 // seconds
}

// Planner plans and logically executes moves against the live settings.
// Execution is immediate: the position advances when the move is queued and
// the runtime velocity tracks the last cruise velocity until Finish.
type Planner struct {
	set   *machine.Settings
	state *machine.State

	pos      [machine.Axes]float64 // machine position, mm
	g92      [machine.Axes]float64 // G92 origin shift, mm
	velocity float64               // current runtime velocity, mm/min
	queued   int                   // lifetime move count
}

func New(set *machine.Settings, state *machine.State) *Planner {
	return &Planner{set: set, state: state}
}

// QueueMove plans a move to target and executes it. Disabled axes hold their
// current position; enabled axes are limit-checked against travel maximum.
func (p *Planner) QueueMove(target [machine.Axes]float64, feed float64) error {
	m := &Move{Start: p.pos, Feed: feed}

	for a := 0; a < machine.Axes; a++ {
		if p.set.Axes[a].AxisMode == 0 {
			m.End[a] = p.pos[a] // disabled axis never moves
			continue
		}
		if math.Abs(target[a]) > p.set.Axes[a].TravelMax {
			return ErrTravelLimit
		}
		m.End[a] = target[a]
	}

	var sq float64
	for a := machine.AxisX; a <= machine.AxisZ; a++ {
		d := m.End[a] - m.Start[a]
		sq += d * d
	}
	m.Distance = math.Sqrt(sq)
	if m.Distance == 0 {
		// rotary-only and zero-length moves carry no linear profile
		p.pos = m.End
		return nil
	}

	p.profile(m)
	p.pos = m.End
	p.velocity = m.CruiseVel
	p.state.MachineState = machine.StateRun
	p.queued++
	return nil
}

// profile computes a trapezoidal velocity profile, degrading to a triangle
// when the move is too short to reach the requested feedrate. Feedrates are
// mm/min; profile times are seconds.
func (p *Planner) profile(m *Move) {
	vel := m.Feed
	if vel <= 0 {
		vel = p.state.FeedRate
	}
	if vel <= 0 {
		// rapid or no feedrate yet: run at the fastest moving axis
		for a := machine.AxisX; a <= machine.AxisZ; a++ {
			if m.End[a] != m.Start[a] && p.set.Axes[a].VelocityMax > vel {
				vel = p.set.Axes[a].VelocityMax
			}
		}
	}
	if vel <= 0 {
		return // nothing can move; leave an empty profile
	}

	// cap by each moving axis's velocity maximum, scaled to its share
	for a := machine.AxisX; a <= machine.AxisZ; a++ {
		d := math.Abs(m.End[a] - m.Start[a])
		if d == 0 {
			continue
		}
		axisVel := vel * d / m.Distance
		if limit := p.set.Axes[a].VelocityMax; axisVel > limit {
			vel = limit * m.Distance / d
		}
	}
	m.CruiseVel = vel

	accel := p.set.JunctionAccel // mm/min^2
	velS := vel / 60.0
	accelS := accel / 3600.0
	if p.set.EnableAcceleration == 0 || accelS <= 0 {
		// acceleration disabled: constant-velocity profile
		m.CruiseTime = m.Distance / velS
		m.Duration = m.CruiseTime
		return
	}

	accelDist := (velS * velS) / (2.0 * accelS)
	if accelDist*2.0 >= m.Distance {
		// triangle profile
		accelDist = m.Distance / 2.0
		cruiseS := math.Sqrt(accelS * accelDist)
		m.CruiseVel = cruiseS * 60.0
		m.AccelTime = cruiseS / accelS
		m.DecelTime = m.AccelTime
		m.CruiseTime = 0
	} else {
		m.AccelTime = velS / accelS
		m.DecelTime = m.AccelTime
		m.CruiseTime = (m.Distance - 2.0*accelDist) / velS
	}
	m.Duration = m.AccelTime + m.CruiseTime + m.DecelTime
}

// Finish marks motion complete: velocity drops to zero and the machine state
// returns to stop.
func (p *Planner) Finish() {
	p.velocity = 0
	if p.state.MachineState == machine.StateRun {
		p.state.MachineState = machine.StateStop
	}
}

// RuntimeVelocity returns the current velocity in mm/min.
func (p *Planner) RuntimeVelocity() float64 { return p.velocity }

// MachinePosition returns the absolute machine position of one axis in mm.
func (p *Planner) MachinePosition(axis int) float64 {
	if axis < 0 || axis >= machine.Axes {
		return 0
	}
	return p.pos[axis]
}

// WorkPosition returns the position of one axis in the active coordinate
// system, after the G5x offset and any G92 origin shift.
func (p *Planner) WorkPosition(axis int) float64 {
	if axis < 0 || axis >= machine.Axes {
		return 0
	}
	cs := int(p.set.CoordSystem)
	if cs >= machine.Coords {
		cs = 0
	}
	return p.pos[axis] - p.set.Offsets[cs][axis] - p.g92[axis]
}

// SetPosition overwrites the machine position, used by homing.
func (p *Planner) SetPosition(pos [machine.Axes]float64) {
	p.pos = pos
}

// SetWorkPosition adjusts the G92 origin shift so the given axis reads as
// value in work coordinates without moving the machine.
func (p *Planner) SetWorkPosition(axis int, value float64) {
	if axis < 0 || axis >= machine.Axes {
		return
	}
	cs := int(p.set.CoordSystem)
	if cs >= machine.Coords {
		cs = 0
	}
	p.g92[axis] = p.pos[axis] - p.set.Offsets[cs][axis] - value
}

// ClearOriginShift drops any G92 adjustment.
func (p *Planner) ClearOriginShift() {
	p.g92 = [machine.Axes]float64{}
}

// Position returns the full machine position vector.
func (p *Planner) Position() [machine.Axes]float64 { return p.pos }

// Moves returns how many profiled moves have been executed.
func (p *Planner) Moves() int { return p.queued }
