package machine

// Units modes for the live gcode model. UnitsDegrees exists only for label
// lookup on rotary prints; the active mode is always inch or mm.
const (
	UnitsInch = iota
	UnitsMM
	UnitsDegrees
)

// Machine states reported by the stat parameter.
const (
	StateReset = iota
	StateRun
	StateStop
	StateHold
	StateResume
	StateHoming
)

// StateLabels maps machine state values to their report strings.
var StateLabels = []string{"reset", "run", "stop", "hold", "resume", "homing"}

// UnitLabels maps units modes to their report strings.
var UnitLabels = []string{"inch", "mm", "deg"}

// UnitSuffixes maps units modes to print suffixes.
var UnitSuffixes = []string{" in", " mm", " deg"}

// AxisModeLabels maps axis modes to their display strings.
var AxisModeLabels = []string{
	"[disabled]", "[standard]", "[inhibited]", "[radius]",
	"[slave X]", "[slave Y]", "[slave Z]",
	"[slave XY]", "[slave XZ]", "[slave YZ]", "[slave XYZ]",
}

// State is the runtime model shared between the gcode interpreter and the
// params engine. Single control loop, no locking.
type State struct {
	UnitsMode    uint8 // active linear units (UnitsInch or UnitsMM)
	MachineState uint8 // see StateLabels
	LineNumber   uint32
	AbsoluteMode bool
	FeedRate     float64 // mm/min
}

// NewState returns the power-on runtime state: millimeter units, absolute
// positioning, machine in reset.
func NewState() *State {
	return &State{
		UnitsMode:    UnitsMM,
		MachineState: StateReset,
		AbsoluteMode: true,
	}
}
