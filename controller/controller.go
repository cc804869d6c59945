// Package controller runs the top-level command loop: it owns boot
// sequencing, routes incoming lines to the parameter engine or the gcode
// interpreter, and drives periodic status reports.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mocon/gcode"
	"mocon/machine"
	"mocon/nvm"
	"mocon/params"
	"mocon/planner"
	"mocon/report"
	"mocon/serialio"
	"mocon/stepper"
)

// Controller owns the fully wired machine.
type Controller struct {
	set    *machine.Settings
	state  *machine.State
	eng    *params.Engine
	plan   *planner.Planner
	interp *gcode.Interpreter
	drv    *stepper.Driver
	rep    *report.Reporter
	line   *serialio.Line
	diag   io.Writer
}

// New wires every subsystem over the given transport. store may be nil for
// a volatile instance; diag receives boot and error diagnostics.
func New(rw io.ReadWriter, store nvm.Store, diag io.Writer) *Controller {
	if diag == nil {
		diag = io.Discard
	}
	set := machine.NewSettings()
	state := machine.NewState()
	line := serialio.NewLine(rw)
	plan := planner.New(set, state)
	drv := stepper.New(set)
	interp := gcode.NewInterpreter(set, state, plan)

	eng := params.New(set, state, store, lineWriter{line}, diag, params.Collaborators{
		Motion:  plan,
		Stepper: drv,
		Serial:  line,
		Gcode:   interp,
	})
	rep := report.New(eng, lineWriter{line})
	eng.BindReport(rep)

	return &Controller{
		set: set, state: state, eng: eng, plan: plan,
		interp: interp, drv: drv, rep: rep, line: line, diag: diag,
	}
}

// lineWriter adapts the line discipline's WriteLine to io.Writer for print
// and report output. Payloads arrive with their own newlines; WriteLine owns
// terminator handling, so trailing newlines are trimmed first.
type lineWriter struct{ l *serialio.Line }

func (w lineWriter) Write(p []byte) (int, error) {
	n := len(p)
	for n > 0 && (p[n-1] == '\n' || p[n-1] == '\r') {
		n--
	}
	if err := w.l.WriteLine(string(p[:n])); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Engine exposes the parameter engine for tooling.
func (c *Controller) Engine() *params.Engine { return c.eng }

// Boot initializes persisted configuration and seeds first-boot defaults.
func (c *Controller) Boot() error {
	migrated, err := c.eng.Initialize()
	if err != nil {
		return fmt.Errorf("controller: boot: %w", err)
	}
	if migrated {
		if err := c.rep.InstallDefaults(); err != nil {
			return fmt.Errorf("controller: seed status defaults: %w", err)
		}
	}
	fmt.Fprintf(c.diag, "mocon build %.2f ready\n", machine.FirmwareBuild)
	return nil
}

// Run processes lines until the context ends or the transport closes.
// Lines starting with '$' are parameter commands, everything else is gcode.
// A status interval above zero emits periodic reports while running.
func (c *Controller) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		for {
			s, err := c.line.ReadLine()
			if err != nil {
				errc <- err
				return
			}
			select {
			case lines <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(c.statusInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case <-ticker.C:
			if c.state.MachineState == machine.StateRun && c.set.StatusIntervalTicks > 0 {
				c.rep.Run()
			}
			ticker.Reset(c.statusInterval())
		case s := <-lines:
			c.dispatch(s)
		}
	}
}

// Dispatch handles one already-read line, for hosts that own the read loop.
func (c *Controller) Dispatch(line string) { c.dispatch(line) }

func (c *Controller) dispatch(s string) {
	if s == "" {
		return
	}
	if s[0] == '$' {
		if err := c.eng.Exec(s); err != nil {
			c.line.WriteLine("err: " + err.Error())
			return
		}
		c.line.WriteLine("ok")
		return
	}

	// gcode routes through the gc parameter so the last block stays queryable
	if err := c.eng.Exec("$gc=" + s); err != nil {
		c.line.WriteLine("err: " + err.Error())
		return
	}
	resp := c.eng.GcodeResponse()
	if resp == "" {
		resp = "ok"
	}
	c.line.WriteLine(resp)
}

func (c *Controller) statusInterval() time.Duration {
	ms := float64(c.set.StatusIntervalTicks) * (machine.EstdSegmentUsec / 1000.0)
	if ms <= 0 {
		ms = machine.StatusIntervalDefault
	}
	return time.Duration(ms) * time.Millisecond
}
