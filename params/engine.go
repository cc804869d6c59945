package params

import (
	"io"

	"mocon/machine"
	"mocon/nvm"
)

// MotionProvider supplies live kinematic state for the velocity and position
// parameters. Values are millimeter-based.
type MotionProvider interface {
	RuntimeVelocity() float64
	MachinePosition(axis int) float64
	WorkPosition(axis int) float64
}

// StepperDriver receives immediate pushes when motor microsteps or polarity
// change, so the physical driver never lags the stored configuration.
type StepperDriver interface {
	SetMicrosteps(motor int, microsteps uint8)
	SetPolarity(motor int, polarity uint8)
}

// LineOptions is the live serial transport surface toggled by the serial
// option parameters.
type LineOptions interface {
	SetIgnoreCR(on bool)
	SetIgnoreLF(on bool)
	SetAppendCR(on bool)
	SetEcho(on bool)
	SetFlowControl(on bool)
}

// GcodeRunner executes one block of gcode synchronously and returns the
// response payload to stage for output.
type GcodeRunner interface {
	Run(block string) (string, error)
}

// StatusRunner emits a status report when the sr parameter is queried.
type StatusRunner interface {
	Run() error
}

// Collaborators bundles the external subsystems the engine reaches into.
// Any of them may be nil; the corresponding side effects are then skipped.
type Collaborators struct {
	Motion  MotionProvider
	Stepper StepperDriver
	Serial  LineOptions
	Gcode   GcodeRunner
	Report  StatusRunner
}

// Engine binds the descriptor table to one owned live state and one durable
// store. All access is single-threaded from the control loop.
type Engine struct {
	set   *machine.Settings
	state *machine.State
	store nvm.Store
	out   io.Writer // print sink
	diag  io.Writer // diagnostic sink
	co    Collaborators

	lastGcode     string // last block handed to the gcode interpreter
	gcodeResponse string // staged interpreter response
}

// New returns an engine over the given state and durable store. out receives
// formatted print output, diag receives boot and migration diagnostics.
func New(set *machine.Settings, state *machine.State, store nvm.Store, out, diag io.Writer, co Collaborators) *Engine {
	if out == nil {
		out = io.Discard
	}
	if diag == nil {
		diag = io.Discard
	}
	return &Engine{set: set, state: state, store: store, out: out, diag: diag, co: co}
}

// BindReport installs the status report runner. The reporter renders through
// the engine, so it cannot exist before the engine does.
func (e *Engine) BindReport(r StatusRunner) { e.co.Report = r }

// Settings exposes the live settings aggregate to collaborators that render
// from it (the status report formatter).
func (e *Engine) Settings() *machine.Settings { return e.set }

// State exposes the live runtime state.
func (e *Engine) State() *machine.State { return e.state }

// Store exposes the durable store, for dump tooling.
func (e *Engine) Store() nvm.Store { return e.store }

// GcodeResponse returns the response staged by the last gcode-run set.
func (e *Engine) GcodeResponse() string { return e.gcodeResponse }

// Get reads the parameter at index i into the list's head object. Group
// indices expand into a parent plus one child per member, appended in
// ascending index order.
func (e *Engine) Get(i int, l *List) error {
	if i < 0 || i >= len(table) {
		return ErrIndexRange
	}
	h := l.Head()
	h.Index = i
	h.Token = table[i].Token
	h.Name = table[i].Name
	return e.get(i, h, l)
}

// GetInto populates one object with index, token and value for a non-group
// parameter. Used by group expansion and the report formatter.
func (e *Engine) GetInto(i int, c *CmdObj) error {
	if i < 0 || i >= len(table) {
		return ErrIndexRange
	}
	*c = CmdObj{Index: i, Token: table[i].Token, Name: table[i].Name, Type: TypeNull}
	return e.get(i, c, nil)
}

// Set writes the list's head value through the parameter's set binding.
// Group indices distribute the list's children instead.
func (e *Engine) Set(i int, l *List) error {
	if i < 0 || i >= len(table) {
		return ErrIndexRange
	}
	return e.setOp(i, l.Head(), l)
}

// Print renders the parameter at index i through its format template to the
// engine's output sink. Groups expand and print every child.
func (e *Engine) Print(i int) error {
	if i < 0 || i >= len(table) {
		return ErrIndexRange
	}
	return e.print(i)
}
