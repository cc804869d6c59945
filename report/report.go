// Package report renders status reports from the configured slot vector.
package report

import (
	"fmt"
	"io"
	"strings"

	"mocon/params"
)

// DefaultFields is the slot vector installed on first boot.
var DefaultFields = []string{"line", "xpos", "ypos", "zpos", "apos", "vel", "unit", "stat"}

// Reporter reads the live slot vector and renders one report line per run.
// Which parameters appear, and in what order, is entirely data-driven; any
// readable parameter index can occupy a slot.
type Reporter struct {
	eng *params.Engine
	out io.Writer
}

func New(eng *params.Engine, out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{eng: eng, out: out}
}

// InstallDefaults seeds the slot vector with DefaultFields and persists it.
func (r *Reporter) InstallDefaults() error {
	return r.eng.InstallStatusDefaults(DefaultFields)
}

// Run renders the current report as "token:value,..." pairs.
func (r *Reporter) Run() error {
	var b strings.Builder
	set := r.eng.Settings()

	for _, slot := range set.StatusReport {
		if slot == 0 {
			continue
		}
		var c params.CmdObj
		if err := r.eng.GetInto(int(slot), &c); err != nil {
			continue // a stale slot index is skipped, not fatal
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.Token)
		b.WriteByte(':')
		b.WriteString(render(&c))
	}

	_, err := fmt.Fprintln(r.out, b.String())
	return err
}

func render(c *params.CmdObj) string {
	switch c.Type {
	case params.TypeInt:
		return fmt.Sprintf("%.0f", c.Value)
	case params.TypeString:
		return c.String
	default:
		return fmt.Sprintf("%.3f", c.Value)
	}
}
