// Package stepper models the four motor output channels. Configuration
// pushes (microsteps, polarity) land here immediately when the owning
// parameter changes, so the channel state never lags the stored settings.
package stepper

import (
	"errors"

	"mocon/machine"
)

var ErrChannelRange = errors.New("stepper: motor channel out of range")

// Channel is the live state of one motor output.
type Channel struct {
	Microsteps uint8
	Polarity   uint8 // 0 normal, 1 inverted
	Enabled    bool

	position int64 // current position in steps
	target   int64
}

// Driver owns the motor channels and applies travel derived from the motor
// settings.
type Driver struct {
	set      *machine.Settings
	channels [machine.Motors]Channel
}

func New(set *machine.Settings) *Driver {
	d := &Driver{set: set}
	for m := range d.channels {
		d.channels[m].Microsteps = set.Motors[m].Microsteps
		d.channels[m].Polarity = set.Motors[m].Polarity
	}
	return d
}

// SetMicrosteps updates a channel's microstep resolution.
func (d *Driver) SetMicrosteps(motor int, microsteps uint8) {
	if motor < 0 || motor >= machine.Motors {
		return
	}
	d.channels[motor].Microsteps = microsteps
}

// SetPolarity updates a channel's direction polarity.
func (d *Driver) SetPolarity(motor int, polarity uint8) {
	if motor < 0 || motor >= machine.Motors {
		return
	}
	d.channels[motor].Polarity = polarity
}

// Enable powers a channel on or off.
func (d *Driver) Enable(motor int, on bool) error {
	if motor < 0 || motor >= machine.Motors {
		return ErrChannelRange
	}
	d.channels[motor].Enabled = on
	return nil
}

// MoveTo converts axis travel in millimeters to a step target for the
// channel, honoring polarity. Steps are derived from the motor's
// steps-per-unit value.
func (d *Driver) MoveTo(motor int, mm float64) error {
	if motor < 0 || motor >= machine.Motors {
		return ErrChannelRange
	}
	ch := &d.channels[motor]
	steps := int64(mm * d.set.Motors[motor].StepsPerUnit)
	if ch.Polarity != 0 {
		steps = -steps
	}
	ch.target = steps
	ch.position = steps // logical execution is immediate
	return nil
}

// Position returns a channel's position in millimeters.
func (d *Driver) Position(motor int) float64 {
	if motor < 0 || motor >= machine.Motors {
		return 0
	}
	spu := d.set.Motors[motor].StepsPerUnit
	if spu == 0 {
		return 0
	}
	steps := d.channels[motor].position
	if d.channels[motor].Polarity != 0 {
		steps = -steps
	}
	return float64(steps) / spu
}

// State returns a copy of a channel's state for inspection.
func (d *Driver) State(motor int) (Channel, error) {
	if motor < 0 || motor >= machine.Motors {
		return Channel{}, ErrChannelRange
	}
	return d.channels[motor], nil
}
