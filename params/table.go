// Package params implements the parameter registry and access engine: a
// single ordered descriptor table addressing every tunable and reportable
// value by short token and friendly name, typed get/set/print dispatch,
// hierarchical group expansion, and versioned persistence to the nvm store.
package params

import (
	"fmt"

	"mocon/machine"
)

// GetOp selects the get behavior bound to a descriptor.
type GetOp uint8

const (
	GetNul  GetOp = iota // no-op
	GetU8                // read uint8 target
	GetU32               // read uint32 target
	GetF64               // read float64 target, no unit conversion
	GetF64U              // read float64 target with linear unit conversion

	// parameter-specific behaviors
	GetState          // machine state value plus label string
	GetVelocity       // live runtime velocity from the motion subsystem
	GetMachPos        // live machine position for the descriptor's axis
	GetWorkPos        // live work position for the descriptor's axis
	GetUnits          // active units mode as a label string
	GetAxisMode       // axis mode value plus label string
	GetGcode          // last submitted gcode block
	GetStatusRun      // trigger a status report
	GetStatusInterval // interval ticks converted back to milliseconds
	GetGroup          // expand a prefix-matched group
	GetSysGroup       // expand the system group (flag membership)
	GetQueryGroup     // expand the query group (flag membership)
)

// SetOp selects the set behavior bound to a descriptor.
type SetOp uint8

const (
	SetNul  SetOp = iota // write-protected or action-only
	SetU8                // store uint8, silently truncating
	SetU32               // store uint32, silently truncating
	SetF64               // store float64, no unit conversion
	SetF64U              // store float64 with linear unit conversion

	// parameter-specific behaviors
	SetGcodeRun       // hand the block to the gcode interpreter
	SetStatusReport   // replace the whole status-report slot vector
	SetStatusInterval // clamp and convert to segment ticks
	SetStepAngle      // store, then recompute steps per unit
	SetTravelRev      // store, then recompute steps per unit
	SetMicrosteps     // store, recompute, push to the stepper driver
	SetPolarity       // store, push to the stepper driver
	SetIgnoreCR       // store and toggle the transport option
	SetIgnoreLF       // store and toggle the transport option
	SetAppendCR       // store and toggle the transport option
	SetEcho           // store and toggle the transport option
	SetFlowControl    // store and toggle the transport option
	SetGroup          // distribute a chain over group children
)

// PrintOp selects the print behavior bound to a descriptor.
type PrintOp uint8

const (
	PrintNul PrintOp = iota
	PrintU8
	PrintU32
	PrintF64
	PrintLinear   // float with in/mm suffix and unit conversion
	PrintRotary   // float with deg suffix, never converted
	PrintAxisMode // axis mode value with its label
	PrintGroup    // expand and print every child
)

// Flag carries per-descriptor group membership, replacing the original's
// hand-maintained inclusion string lists.
type Flag uint8

const (
	FlagSys   Flag = 1 << iota // member of the "sys" group
	FlagQuery                  // member of the "?" query group
)

// target resolves a descriptor's storage location inside the live state.
// A nil target marks pure actions and computed or live-read values.
type target func(s *machine.Settings, r *machine.State) any

// Entry is the immutable schema record for one parameter.
type Entry struct {
	Token   string // 1-4 char mnemonic, unique, lowercase
	Name    string // friendly name, unique, no separators
	Format  string // print template
	Flags   Flag
	Get     GetOp
	Set     SetOp
	Print   PrintOp
	Target  target
	Default float64 // compiled-in default for cold start / migration
}

// table is the descriptor table. Ordering is load-bearing: singletons first,
// then the status-report slot vector, then group entries last. A descriptor's
// position is its persistent identity; never reorder assigned indices.
var table = buildTable()

// Derived region boundaries, computed once from the table.
var (
	startStatus int // first status-report slot entry
	startGroups int // first group entry
)

func init() {
	startStatus, startGroups = -1, -1
	for i, e := range table {
		if startStatus < 0 && e.Token == "sr00" {
			startStatus = i
		}
		if startGroups < 0 && isGroupOp(e.Get) {
			startGroups = i
		}
	}
	if startStatus < 0 || startGroups < 0 || startStatus >= startGroups {
		panic("params: malformed descriptor table regions")
	}
}

func isGroupOp(op GetOp) bool {
	return op == GetGroup || op == GetSysGroup || op == GetQueryGroup
}

// Region identifies which table partition an index falls in.
type Region uint8

const (
	RegionSingle Region = iota // singleton parameters
	RegionStatus               // status-report slot vector
	RegionGroup                // group / parent tokens
)

// Count returns the descriptor table size.
func Count() int { return len(table) }

// RegionOf returns the region the index falls in. Callers bounds-check
// first; RegionOf itself does not.
func RegionOf(i int) Region {
	switch {
	case i >= startGroups:
		return RegionGroup
	case i >= startStatus:
		return RegionStatus
	default:
		return RegionSingle
	}
}

// At returns the descriptor at index i.
func At(i int) (*Entry, error) {
	if i < 0 || i >= len(table) {
		return nil, ErrIndexRange
	}
	return &table[i], nil
}

func buildTable() []Entry {
	t := make([]Entry, 0, 224)

	// identity block: fc must be index 0 (the NVM version stamp slot)
	t = append(t,
		Entry{Token: "fc", Name: "config_version", Format: "[fc]  config_version  %16.2f\n",
			Get: GetF64, Set: SetNul, Print: PrintF64,
			Target:  func(s *machine.Settings, r *machine.State) any { return &s.Version },
			Default: machine.FirmwareBuild},
		Entry{Token: "fv", Name: "firmware_version", Format: "[fv]  firmware_version%16.2f\n",
			Flags: FlagSys, Get: GetF64, Set: SetNul, Print: PrintF64,
			Target:  func(s *machine.Settings, r *machine.State) any { return &s.FirmwareVersion },
			Default: machine.FirmwareVersion},
		Entry{Token: "fb", Name: "firmware_build", Format: "[fb]  firmware_build  %16.2f\n",
			Flags: FlagSys, Get: GetF64, Set: SetNul, Print: PrintF64,
			Target:  func(s *machine.Settings, r *machine.State) any { return &s.FirmwareBuild },
			Default: machine.FirmwareBuild},
	)

	// runtime status block
	t = append(t,
		Entry{Token: "line", Name: "line_number", Format: "[line] line_number%17.0f\n",
			Get: GetU32, Set: SetU32, Print: PrintU32,
			Target: func(s *machine.Settings, r *machine.State) any { return &r.LineNumber }},
		Entry{Token: "stat", Name: "machine_state", Format: "[stat] machine_state %14d\n",
			Flags: FlagQuery, Get: GetState, Set: SetNul, Print: PrintU8,
			Target: func(s *machine.Settings, r *machine.State) any { return &r.MachineState }},
		Entry{Token: "vel", Name: "velocity", Format: "[vel] velocity %23.3f%s/min\n",
			Get: GetVelocity, Set: SetNul, Print: PrintLinear},
		Entry{Token: "unit", Name: "unit",
			Get: GetUnits, Set: SetNul, Print: PrintNul,
			Target: func(s *machine.Settings, r *machine.State) any { return &r.UnitsMode }},
		Entry{Token: "sr", Name: "status_report",
			Get: GetStatusRun, Set: SetStatusReport, Print: PrintNul},
		Entry{Token: "si", Name: "status_interval", Format: "[si]  status_interval    %10.0f ms [0=off]\n",
			Flags: FlagSys, Get: GetStatusInterval, Set: SetStatusInterval, Print: PrintF64,
			Target:  func(s *machine.Settings, r *machine.State) any { return &s.StatusIntervalTicks },
			Default: machine.StatusIntervalDefault},
	)

	// gcode block and power-on defaults. Ordering within this block matters
	// for name resolution: gc precedes the gcode_* defaults.
	t = append(t,
		Entry{Token: "gc", Name: "gcode", Format: "[gc]",
			Get: GetGcode, Set: SetGcodeRun, Print: PrintNul},
		u8(
			"gpl", "gcode_select_plane", "[gpl] gcode_select_plane %10d [G17,G18,G19]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.SelectPlane },
			machine.DefaultPlane),
		u8("gun", "gcode_units_mode", "[gun] gcode_units_mode   %10d [G20,G21]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.UnitsMode },
			machine.DefaultUnits),
		u8("gco", "gcode_coord_system", "[gco] gcode_coord_system %10d [G54-G59]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.CoordSystem },
			machine.DefaultCoordSystem),
		u8("gpa", "gcode_path_control", "[gpa] gcode_path_control %10d [G61,G61.1,G64]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.PathControl },
			machine.DefaultPathControl),
		u8("gdi", "gcode_distance_mode", "[gdi] gcode_distance_mode%10d [G90,G91]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.DistanceMode },
			machine.DefaultDistanceMode),
	)

	// global motion block
	t = append(t,
		u8("ea", "enable_acceleration", "[ea]  enable_acceleration%10d [0,1]\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.EnableAcceleration },
			machine.DefaultEnableAccel),
		lin("ja", "junction_acceleration", "[ja]  junction_acceleration%8.0f%s\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.JunctionAccel },
			machine.DefaultJunctionAccel),
		lin("ml", "min_line_segment", "[ml]  min_line_segment   %14.3f%s\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.MinSegmentLen },
			machine.DefaultMinSegmentLen),
		lin("ma", "min_arc_segment", "[ma]  min_arc_segment    %14.3f%s\n", FlagSys,
			func(s *machine.Settings, r *machine.State) any { return &s.ArcSegmentLen },
			machine.DefaultArcSegmentLen),
		Entry{Token: "mt", Name: "min_segment_time", Format: "[mt]  min_segment_time   %10.0f uSec\n",
			Flags: FlagSys, Get: GetF64, Set: SetF64, Print: PrintF64,
			Target:  func(s *machine.Settings, r *machine.State) any { return &s.EstdSegmentTime },
			Default: machine.EstdSegmentUsec},
	)

	// serial line discipline block; each set also toggles the live transport
	t = append(t,
		comm("ic", "ignore_cr", "[ic]  ignore_CR (on RX)%12d [0,1]\n", SetIgnoreCR,
			func(s *machine.Settings, r *machine.State) any { return &s.IgnoreCR },
			machine.DefaultIgnoreCR),
		comm("il", "ignore_lf", "[il]  ignore_LF (on RX)%12d [0,1]\n", SetIgnoreLF,
			func(s *machine.Settings, r *machine.State) any { return &s.IgnoreLF },
			machine.DefaultIgnoreLF),
		comm("ec", "enable_cr", "[ec]  enable_CR (on TX)%12d [0,1]\n", SetAppendCR,
			func(s *machine.Settings, r *machine.State) any { return &s.EnableCR },
			machine.DefaultEnableCR),
		comm("ee", "enable_echo", "[ee]  enable_echo      %12d [0,1]\n", SetEcho,
			func(s *machine.Settings, r *machine.State) any { return &s.EnableEcho },
			machine.DefaultEnableEcho),
		comm("ex", "enable_xon_xoff", "[ex]  enable_xon_xoff  %12d [0,1]\n", SetFlowControl,
			func(s *machine.Settings, r *machine.State) any { return &s.EnableXonXoff },
			machine.DefaultEnableXon),
	)

	t = append(t, motorEntries()...)
	t = append(t, axisEntries()...)
	t = append(t, offsetEntries()...)
	t = append(t, statusSlotEntries()...)
	t = append(t, groupEntries()...)
	return t
}

func u8(tok, name, format string, flags Flag, tgt target, def float64) Entry {
	return Entry{Token: tok, Name: name, Format: format, Flags: flags,
		Get: GetU8, Set: SetU8, Print: PrintU8, Target: tgt, Default: def}
}

func lin(tok, name, format string, flags Flag, tgt target, def float64) Entry {
	return Entry{Token: tok, Name: name, Format: format, Flags: flags,
		Get: GetF64U, Set: SetF64U, Print: PrintLinear, Target: tgt, Default: def}
}

func comm(tok, name, format string, set SetOp, tgt target, def float64) Entry {
	return Entry{Token: tok, Name: name, Format: format, Flags: FlagSys,
		Get: GetU8, Set: set, Print: PrintU8, Target: tgt, Default: def}
}

// motorEntries builds the six descriptors per motor channel. Tokens start
// with the motor digit (1ma, 1sa, ...).
func motorEntries() []Entry {
	var out []Entry
	for m := 0; m < machine.Motors; m++ {
		m := m
		d := m + 1 // motor digit
		out = append(out,
			u8(fmt.Sprintf("%dma", d), fmt.Sprintf("m%d_map_to_axis", d),
				fmt.Sprintf("[%dma] m%d_map_to_axis%%15d [0=X, 1=Y...]\n", d, d), 0,
				func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].MotorMap },
				machine.DefaultMotorMap[m]),
			Entry{Token: fmt.Sprintf("%dsa", d), Name: fmt.Sprintf("m%d_step_angle", d),
				Format: fmt.Sprintf("[%dsa] m%d_step_angle%%20.3f%%s\n", d, d),
				Get:    GetF64, Set: SetStepAngle, Print: PrintRotary,
				Target:  func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].StepAngle },
				Default: machine.DefaultStepAngle},
			Entry{Token: fmt.Sprintf("%dtr", d), Name: fmt.Sprintf("m%d_travel_per_revolution", d),
				Format: fmt.Sprintf("[%dtr] m%d_travel_per_revolution%%9.3f%%s\n", d, d),
				Get:    GetF64, Set: SetTravelRev, Print: PrintLinear,
				Target:  func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].TravelRev },
				Default: machine.DefaultTravelRev},
			Entry{Token: fmt.Sprintf("%dmi", d), Name: fmt.Sprintf("m%d_microsteps", d),
				Format: fmt.Sprintf("[%dmi] m%d_microsteps %%15d [1,2,4,8]\n", d, d),
				Get:    GetU8, Set: SetMicrosteps, Print: PrintU8,
				Target:  func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].Microsteps },
				Default: machine.DefaultMicrosteps},
			Entry{Token: fmt.Sprintf("%dpo", d), Name: fmt.Sprintf("m%d_polarity", d),
				Format: fmt.Sprintf("[%dpo] m%d_polarity   %%15d [0,1]\n", d, d),
				Get:    GetU8, Set: SetPolarity, Print: PrintU8,
				Target:  func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].Polarity },
				Default: machine.DefaultPolarity},
			u8(fmt.Sprintf("%dpm", d), fmt.Sprintf("m%d_power_management", d),
				fmt.Sprintf("[%dpm] m%d_power_management%%10d [0,1]\n", d, d), 0,
				func(s *machine.Settings, r *machine.State) any { return &s.Motors[m].PowerMode },
				machine.DefaultPowerMode),
		)
	}
	return out
}

var axisLetters = "xyzabc"

// axisEntries builds the per-axis descriptors. X, Y and Z are linear
// (unit-converted); A, B and C are rotary (degrees, never converted) and add
// a radius parameter.
func axisEntries() []Entry {
	var out []Entry
	for a := 0; a < machine.Axes; a++ {
		a := a
		ax := axisLetters[a]
		rotary := a >= machine.AxisA
		def := machine.LinearDefaults
		if rotary {
			def = machine.RotaryDefaults
		}
		get, set, prt := GetF64U, SetF64U, PrintLinear
		if rotary {
			get, set, prt = GetF64, SetF64, PrintRotary
		}
		num := func(t, n, f string, tgt target, d float64) Entry {
			return Entry{Token: t, Name: n, Format: f,
				Get: get, Set: set, Print: prt, Target: tgt, Default: d}
		}
		out = append(out,
			Entry{Token: tok(ax, "am"), Name: name(ax, "axis_mode"),
				Format: fmt.Sprintf("[%cam] %c_axis_mode%%18d %%s\n", ax, ax),
				Get:    GetAxisMode, Set: SetU8, Print: PrintAxisMode,
				Target:  func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].AxisMode },
				Default: def.AxisMode},
			num(tok(ax, "fr"), name(ax, "feedrate_maximum"),
				fmt.Sprintf("[%cfr] %c_feedrate_maximum%%15.3f%%s/min\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].FeedrateMax },
				def.FeedrateMax),
			num(tok(ax, "vm"), name(ax, "velocity_maximum"),
				fmt.Sprintf("[%cvm] %c_velocity_maximum%%15.3f%%s/min\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].VelocityMax },
				def.VelocityMax),
			num(tok(ax, "tm"), name(ax, "travel_maximum"),
				fmt.Sprintf("[%ctm] %c_travel_maximum%%17.3f%%s\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].TravelMax },
				def.TravelMax),
			num(tok(ax, "jm"), name(ax, "jerk_maximum"),
				fmt.Sprintf("[%cjm] %c_jerk_maximum%%15.0f%%s/min^3\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].JerkMax },
				def.JerkMax),
			num(tok(ax, "jd"), name(ax, "junction_deviation"),
				fmt.Sprintf("[%cjd] %c_junction_deviation%%14.4f%%s\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].JunctionDev },
				def.JunctionDev),
		)
		if rotary {
			out = append(out, num(tok(ax, "ra"), name(ax, "radius_value"),
				fmt.Sprintf("[%cra] %c_radius_value%%20.4f%%s\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].Radius },
				def.Radius))
		}
		out = append(out,
			u8(tok(ax, "sm"), name(ax, "switch_mode"),
				fmt.Sprintf("[%csm] %c_switch_mode%%16d [0,1]\n", ax, ax), 0,
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].SwitchMode },
				def.SwitchMode),
			num(tok(ax, "sv"), name(ax, "search_velocity"),
				fmt.Sprintf("[%csv] %c_search_velocity%%16.3f%%s/min\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].SearchVelocity },
				def.SearchVelocity),
			num(tok(ax, "lv"), name(ax, "latch_velocity"),
				fmt.Sprintf("[%clv] %c_latch_velocity%%17.3f%%s/min\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].LatchVelocity },
				def.LatchVelocity),
			num(tok(ax, "zo"), name(ax, "zero_offset"),
				fmt.Sprintf("[%czo] %c_zero_offset%%20.3f%%s\n", ax, ax),
				func(s *machine.Settings, r *machine.State) any { return &s.Axes[a].ZeroOffset },
				def.ZeroOffset),
			Entry{Token: tok(ax, "abs"), Name: name(ax, "absolute_position"),
				Format: fmt.Sprintf("[%cabs] %c_absolute_position%%13.3f%%s\n", ax, ax),
				Get:    GetMachPos, Set: SetNul, Print: prt},
			Entry{Token: tok(ax, "pos"), Name: name(ax, "position"),
				Format: fmt.Sprintf("[%cpos] %c_position%%22.3f%%s\n", ax, ax),
				Flags:  FlagQuery, Get: GetWorkPos, Set: SetNul, Print: prt},
		)
	}
	return out
}

func tok(ax byte, suffix string) string  { return string(ax) + suffix }
func name(ax byte, suffix string) string { return string(ax) + "_" + suffix }

// offsetEntries builds the G54-G59 coordinate system offsets, six axes per
// system. All are linear millimeter values.
func offsetEntries() []Entry {
	var out []Entry
	for c := 0; c < machine.Coords; c++ {
		c := c
		g := 54 + c
		for a := 0; a < machine.Axes; a++ {
			a := a
			ax := axisLetters[a]
			out = append(out, lin(
				fmt.Sprintf("g%d%c", g, ax),
				fmt.Sprintf("g%d_%c_offset", g, ax),
				fmt.Sprintf("[g%d%c] g%d_%c_offset%%18.3f%%s\n", g, ax, g, ax), 0,
				func(s *machine.Settings, r *machine.State) any { return &s.Offsets[c][a] },
				0))
		}
	}
	return out
}

// statusSlotEntries builds the persistence vector for the status report
// specification. Must be contiguous and precede the group region.
func statusSlotEntries() []Entry {
	var out []Entry
	for i := 0; i < machine.StatusSlots; i++ {
		i := i
		t := fmt.Sprintf("sr%02d", i)
		out = append(out, Entry{Token: t, Name: t,
			Get: GetU32, Set: SetU32, Print: PrintNul,
			Target: func(s *machine.Settings, r *machine.State) any { return &s.StatusReport[i] }})
	}
	return out
}

// groupEntries builds the parent tokens. Group descriptors must trail every
// descriptor they can expand over: expansion only scans indices below them.
func groupEntries() []Entry {
	grp := func(t string) Entry {
		return Entry{Token: t, Name: t, Get: GetGroup, Set: SetGroup, Print: PrintGroup}
	}
	out := []Entry{
		grp("g54"), grp("g55"), grp("g56"), grp("g57"), grp("g58"), grp("g59"),
		{Token: "sys", Name: "sys", Get: GetSysGroup, Set: SetGroup, Print: PrintGroup},
		{Token: "?", Name: "qm", Get: GetQueryGroup, Set: SetNul, Print: PrintGroup},
	}
	for _, ax := range []string{"x", "y", "z", "a", "b", "c", "1", "2", "3", "4"} {
		out = append(out, grp(ax))
	}
	return out
}
