package gcode

import (
	"errors"
	"fmt"

	"mocon/machine"
)

// ErrUnsupported is returned for gcode words outside the accepted subset.
var ErrUnsupported = errors.New("gcode: unsupported command")

// Motion is the planner surface the interpreter drives.
type Motion interface {
	QueueMove(target [machine.Axes]float64, feed float64) error
	Position() [machine.Axes]float64
	SetPosition(pos [machine.Axes]float64)
	SetWorkPosition(axis int, value float64)
	WorkPosition(axis int) float64
	Finish()
}

// Interpreter executes parsed blocks against the live machine state. Inch
// input (G20) is converted to millimeters on entry; the planner and the
// settings only ever see millimeters.
type Interpreter struct {
	set    *machine.Settings
	state  *machine.State
	motion Motion
}

func NewInterpreter(set *machine.Settings, state *machine.State, motion Motion) *Interpreter {
	return &Interpreter{set: set, state: state, motion: motion}
}

// Run parses and executes one block and returns the response payload.
func (in *Interpreter) Run(block string) (string, error) {
	cmd, err := Parse(block)
	if err != nil {
		return "", err
	}
	if cmd == nil {
		return "ok", nil
	}
	if cmd.Has('N') {
		in.state.LineNumber = uint32(cmd.Param('N', 0))
	}

	switch cmd.Letter {
	case 'G':
		return in.runG(cmd)
	case 'M':
		return in.runM(cmd)
	case 0:
		// bare axis words continue the previous motion mode
		if len(cmd.Params) > 0 {
			return in.doMove(cmd)
		}
		return "ok", nil
	}
	return "", fmt.Errorf("%w: %c%d", ErrUnsupported, cmd.Letter, cmd.Number)
}

func (in *Interpreter) runG(cmd *Command) (string, error) {
	switch cmd.Number {
	case 0, 1:
		return in.doMove(cmd)
	case 20:
		in.state.UnitsMode = machine.UnitsInch
	case 21:
		in.state.UnitsMode = machine.UnitsMM
	case 28:
		return in.doHome(cmd)
	case 90:
		in.state.AbsoluteMode = true
	case 91:
		in.state.AbsoluteMode = false
	case 92:
		return in.doOriginShift(cmd)
	default:
		return "", fmt.Errorf("%w: G%d", ErrUnsupported, cmd.Number)
	}
	return "ok", nil
}

func (in *Interpreter) runM(cmd *Command) (string, error) {
	switch cmd.Number {
	case 0, 1: // stop
		in.motion.Finish()
		in.state.MachineState = machine.StateStop
	case 2, 30: // program end
		in.motion.Finish()
		in.state.MachineState = machine.StateReset
	default:
		return "", fmt.Errorf("%w: M%d", ErrUnsupported, cmd.Number)
	}
	return "ok", nil
}

var axisWords = [machine.Axes]byte{'X', 'Y', 'Z', 'A', 'B', 'C'}

// toMM converts a linear input value to millimeters per the active units
// mode. Rotary words are always degrees.
func (in *Interpreter) toMM(axis int, v float64) float64 {
	if axis <= machine.AxisZ && in.state.UnitsMode == machine.UnitsInch {
		return v * machine.MMPerInch
	}
	return v
}

func (in *Interpreter) doMove(cmd *Command) (string, error) {
	current := in.motion.Position()
	target := current

	if cmd.Has('F') {
		f := cmd.Param('F', 0)
		if in.state.UnitsMode == machine.UnitsInch {
			f *= machine.MMPerInch
		}
		in.state.FeedRate = f
	}

	moved := false
	for a, w := range axisWords {
		if !cmd.Has(w) {
			continue
		}
		moved = true
		v := in.toMM(a, cmd.Param(w, 0))
		if in.state.AbsoluteMode {
			// absolute words are work coordinates; shift into machine space
			target[a] = current[a] + (v - in.motion.WorkPosition(a))
		} else {
			target[a] = current[a] + v
		}
	}
	if !moved {
		return "ok", nil
	}

	feed := in.state.FeedRate
	if cmd.Letter == 'G' && cmd.Number == 0 {
		feed = 0 // rapid: planner picks the velocity maximum
	}
	if err := in.motion.QueueMove(target, feed); err != nil {
		return "", err
	}
	return "ok", nil
}

// doHome drives the named axes (or all of them) to machine zero and declares
// them homed. There is no physical switch seek on the host side.
func (in *Interpreter) doHome(cmd *Command) (string, error) {
	in.state.MachineState = machine.StateHoming

	pos := in.motion.Position()
	named := false
	for a, w := range axisWords {
		if cmd.Has(w) {
			named = true
			pos[a] = 0
		}
	}
	if !named {
		pos = [machine.Axes]float64{}
	}
	in.motion.SetPosition(pos)
	in.motion.Finish()
	in.state.MachineState = machine.StateStop
	return "ok", nil
}

func (in *Interpreter) doOriginShift(cmd *Command) (string, error) {
	for a, w := range axisWords {
		if !cmd.Has(w) {
			continue
		}
		in.motion.SetWorkPosition(a, in.toMM(a, cmd.Param(w, 0)))
	}
	return "ok", nil
}
