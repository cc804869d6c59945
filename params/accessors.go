package params

import (
	"errors"
	"fmt"
	"math"

	"mocon/machine"
)

var errNoList = errors.New("params: group operation requires a command list")

// typed target helpers; descriptors bind the op kind and the target type
// together at table definition time, so a mismatch is a table defect.

func (e *Engine) tgtU8(i int) *uint8 {
	if table[i].Target == nil {
		return nil
	}
	p, _ := table[i].Target(e.set, e.state).(*uint8)
	return p
}

func (e *Engine) tgtU32(i int) *uint32 {
	if table[i].Target == nil {
		return nil
	}
	p, _ := table[i].Target(e.set, e.state).(*uint32)
	return p
}

func (e *Engine) tgtF64(i int) *float64 {
	if table[i].Target == nil {
		return nil
	}
	p, _ := table[i].Target(e.set, e.state).(*float64)
	return p
}

func (e *Engine) inches() bool { return e.state.UnitsMode == machine.UnitsInch }

// get dispatches the descriptor's get binding into c. l is only consulted by
// group expansions.
func (e *Engine) get(i int, c *CmdObj, l *List) error {
	switch table[i].Get {
	case GetNul:
		c.Type = TypeNull

	case GetU8:
		if p := e.tgtU8(i); p != nil {
			c.Value = float64(*p)
		}
		c.Type = TypeInt

	case GetU32:
		if p := e.tgtU32(i); p != nil {
			c.Value = float64(*p)
		}
		c.Type = TypeInt

	case GetF64:
		if p := e.tgtF64(i); p != nil {
			c.Value = *p
		}
		c.Type = TypeFloat

	case GetF64U:
		if p := e.tgtF64(i); p != nil {
			c.Value = *p
		}
		if e.inches() {
			c.Value *= machine.InchPerMM
		}
		c.Type = TypeFloat

	case GetState:
		st := *e.tgtU8(i)
		c.Value = float64(st)
		if int(st) < len(machine.StateLabels) {
			c.String = machine.StateLabels[st]
		}
		c.Type = TypeString

	case GetVelocity:
		if e.co.Motion != nil {
			c.Value = e.co.Motion.RuntimeVelocity()
		}
		if e.inches() {
			c.Value *= machine.InchPerMM
		}
		c.Type = TypeFloat

	case GetMachPos:
		if e.co.Motion != nil {
			c.Value = e.co.Motion.MachinePosition(axisOf(i))
		}
		c.Type = TypeFloat

	case GetWorkPos:
		if e.co.Motion != nil {
			c.Value = e.co.Motion.WorkPosition(axisOf(i))
		}
		c.Type = TypeFloat

	case GetUnits:
		u := *e.tgtU8(i)
		c.Value = float64(u)
		if int(u) < len(machine.UnitLabels) {
			c.String = machine.UnitLabels[u]
		}
		c.Type = TypeString

	case GetAxisMode:
		m := *e.tgtU8(i)
		c.Value = float64(m)
		if int(m) < len(machine.AxisModeLabels) {
			c.String = machine.AxisModeLabels[m]
		}
		c.Type = TypeInt

	case GetGcode:
		c.String = e.lastGcode
		c.Type = TypeString

	case GetStatusRun:
		if e.co.Report != nil {
			return e.co.Report.Run()
		}

	case GetStatusInterval:
		ticks := *e.tgtU8(i)
		c.Value = float64(ticks) * (machine.EstdSegmentUsec / 1000.0)
		c.Type = TypeInt

	case GetGroup:
		if l == nil {
			return errNoList
		}
		return e.expandPrefixGroup(i, c, l)

	case GetSysGroup:
		if l == nil {
			return errNoList
		}
		return e.expandFlagGroup(i, c, l, FlagSys)

	case GetQueryGroup:
		if l == nil {
			return errNoList
		}
		return e.expandFlagGroup(i, c, l, FlagQuery)
	}
	return nil
}

// setOp routes group and vector sets, everything else to the leaf path.
func (e *Engine) setOp(i int, c *CmdObj, l *List) error {
	switch table[i].Set {
	case SetGroup:
		if l == nil {
			return errNoList
		}
		return e.distribute(l)
	case SetStatusReport:
		if l == nil {
			return errNoList
		}
		return e.setStatusReport(l)
	default:
		return e.setLeaf(i, c)
	}
}

// setLeaf dispatches a single-parameter set binding. Numeric narrowing is
// silent truncation, matching the inherited firmware behavior.
func (e *Engine) setLeaf(i int, c *CmdObj) error {
	if i < 0 || i >= len(table) {
		return ErrIndexRange
	}
	switch table[i].Set {
	case SetNul:
		// write-protected

	case SetU8:
		if p := e.tgtU8(i); p != nil {
			*p = uint8(int64(c.Value))
		}

	case SetU32:
		if p := e.tgtU32(i); p != nil {
			*p = uint32(int64(c.Value))
		}

	case SetF64:
		if p := e.tgtF64(i); p != nil {
			*p = c.Value
		}

	case SetF64U:
		if p := e.tgtF64(i); p != nil {
			if e.inches() {
				*p = c.Value * machine.MMPerInch
			} else {
				*p = c.Value
			}
		}

	case SetGcodeRun:
		e.runGcode(c)

	case SetStatusInterval:
		ms := c.Value
		if ms < machine.StatusIntervalMinMS {
			ms = machine.StatusIntervalMinMS
		} else if ms > machine.StatusIntervalMaxMS {
			ms = machine.StatusIntervalMaxMS
		}
		c.Value = ms // persisted as the clamped millisecond request
		*e.tgtU8(i) = uint8(math.Ceil(ms / (machine.EstdSegmentUsec / 1000.0)))

	case SetStepAngle, SetTravelRev:
		if p := e.tgtF64(i); p != nil {
			*p = c.Value
		}
		e.recomputeStepsPerUnit(motorOf(i))

	case SetMicrosteps:
		if p := e.tgtU8(i); p != nil {
			*p = uint8(int64(c.Value))
		}
		m := motorOf(i)
		e.recomputeStepsPerUnit(m)
		if e.co.Stepper != nil {
			e.co.Stepper.SetMicrosteps(m, uint8(int64(c.Value)))
		}

	case SetPolarity:
		if p := e.tgtU8(i); p != nil {
			*p = uint8(int64(c.Value))
		}
		if e.co.Stepper != nil {
			e.co.Stepper.SetPolarity(motorOf(i), uint8(int64(c.Value)))
		}

	case SetIgnoreCR, SetIgnoreLF, SetAppendCR, SetEcho, SetFlowControl:
		if p := e.tgtU8(i); p != nil {
			*p = uint8(int64(c.Value))
		}
		e.toggleSerial(table[i].Set, c.Value != 0)
	}
	return nil
}

// recomputeStepsPerUnit refreshes the derived steps-per-unit value after a
// step angle, microstep or travel-per-revolution change:
// 360 / (step_angle / microsteps) / travel_per_revolution.
func (e *Engine) recomputeStepsPerUnit(m int) {
	if m < 0 || m >= machine.Motors {
		return
	}
	mo := &e.set.Motors[m]
	if mo.StepAngle == 0 || mo.TravelRev == 0 {
		return
	}
	mo.StepsPerUnit = 360 / (mo.StepAngle / float64(mo.Microsteps)) / mo.TravelRev
}

// runGcode hands the block to the interpreter and stages its response. The
// engine keeps the last block for the gc query; interpreter failures are
// staged as the response, not surfaced as engine errors.
func (e *Engine) runGcode(c *CmdObj) {
	e.lastGcode = c.String
	if e.co.Gcode == nil {
		return
	}
	resp, err := e.co.Gcode.Run(c.String)
	if err != nil {
		e.gcodeResponse = "error: " + err.Error()
		return
	}
	e.gcodeResponse = resp
}

func (e *Engine) toggleSerial(op SetOp, on bool) {
	if e.co.Serial == nil {
		return
	}
	switch op {
	case SetIgnoreCR:
		e.co.Serial.SetIgnoreCR(on)
	case SetIgnoreLF:
		e.co.Serial.SetIgnoreLF(on)
	case SetAppendCR:
		e.co.Serial.SetAppendCR(on)
	case SetEcho:
		e.co.Serial.SetEcho(on)
	case SetFlowControl:
		e.co.Serial.SetFlowControl(on)
	}
}

// print renders one descriptor. Values are re-read through the descriptor's
// own get binding so unit conversion is applied exactly once.
func (e *Engine) print(i int) error {
	ent := &table[i]
	switch ent.Print {
	case PrintNul:
		return nil

	case PrintU8, PrintU32:
		var c CmdObj
		if err := e.GetInto(i, &c); err != nil {
			return err
		}
		fmt.Fprintf(e.out, ent.Format, int64(c.Value))

	case PrintF64:
		var c CmdObj
		if err := e.GetInto(i, &c); err != nil {
			return err
		}
		fmt.Fprintf(e.out, ent.Format, c.Value)

	case PrintLinear:
		var c CmdObj
		if err := e.GetInto(i, &c); err != nil {
			return err
		}
		fmt.Fprintf(e.out, ent.Format, c.Value, machine.UnitSuffixes[e.state.UnitsMode])

	case PrintRotary:
		var c CmdObj
		if err := e.GetInto(i, &c); err != nil {
			return err
		}
		fmt.Fprintf(e.out, ent.Format, c.Value, machine.UnitSuffixes[machine.UnitsDegrees])

	case PrintAxisMode:
		var c CmdObj
		if err := e.GetInto(i, &c); err != nil {
			return err
		}
		fmt.Fprintf(e.out, ent.Format, int64(c.Value), c.String)

	case PrintGroup:
		return e.printGroup(i)
	}
	return nil
}
