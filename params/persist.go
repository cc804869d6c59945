package params

import (
	"fmt"

	"mocon/machine"
)

// persistable reports whether the descriptor at i owns a durable slot. Pure
// actions, groups, live reads and the version stamp at index 0 do not.
func persistable(i int) bool {
	if i <= 0 || i >= startGroups {
		return false
	}
	switch table[i].Set {
	case SetNul, SetGcodeRun, SetStatusReport, SetGroup:
		return false
	}
	return true
}

// canonicalValue returns the value to persist for descriptor i: the internal
// stored representation, which is always millimeter-based regardless of the
// active display units. The status interval persists in milliseconds, not
// ticks, so replay re-derives the tick count against the current segment
// time.
func (e *Engine) canonicalValue(i int) (float64, bool) {
	switch table[i].Get {
	case GetU8, GetState, GetAxisMode, GetUnits:
		if p := e.tgtU8(i); p != nil {
			return float64(*p), true
		}
	case GetU32:
		if p := e.tgtU32(i); p != nil {
			return float64(*p), true
		}
	case GetF64, GetF64U:
		if p := e.tgtF64(i); p != nil {
			return *p, true
		}
	case GetStatusInterval:
		if p := e.tgtU8(i); p != nil {
			return float64(*p) * (machine.EstdSegmentUsec / 1000.0), true
		}
	}
	return 0, false
}

// persistValue writes descriptor i's canonical value to the store. Write
// failures are diagnostic, never fatal; the live value already changed.
func (e *Engine) persistValue(i int) {
	if e.store == nil || !persistable(i) {
		return
	}
	v, ok := e.canonicalValue(i)
	if !ok {
		return
	}
	if err := e.store.WriteValue(i, v); err != nil {
		fmt.Fprintf(e.diag, "nvm write failed for %s (%d): %v\n", table[i].Token, i, err)
	}
}

// persistAfterSet persists whatever a completed set changed: the single
// descriptor for a leaf, every child for a group, the whole slot vector for
// a status report set.
func (e *Engine) persistAfterSet(i int, l *List) {
	switch table[i].Set {
	case SetGroup:
		children := l.Children()
		for k := range children {
			ch := &children[k]
			if ch.Type != TypeNull {
				e.persistValue(ch.Index)
			}
		}
	case SetStatusReport:
		for j := 0; j < machine.StatusSlots; j++ {
			e.persistValue(startStatus + j)
		}
	case SetGcodeRun, SetNul:
		// nothing durable
	default:
		e.persistValue(i)
	}
}

// Initialize brings the live state to a defined configuration at boot. When
// the stored version stamp matches this build, every persisted value is
// replayed through its set binding. On a mismatch (or a fresh store) the
// compiled-in defaults are installed and written back, with the version
// stamp written last so a crash mid-migration re-triggers the migration on
// the next boot. Returns whether a migration ran.
//
// Replay happens in millimeter mode; persisted values are canonical and must
// not pass through display-unit conversion.
func (e *Engine) Initialize() (migrated bool, err error) {
	e.state.UnitsMode = machine.UnitsMM
	e.set.FirmwareVersion = machine.FirmwareVersion
	e.set.FirmwareBuild = machine.FirmwareBuild

	if e.store == nil {
		e.applyDefaults()
		e.set.Version = machine.FirmwareBuild
		return false, nil
	}

	stamp, rerr := e.store.ReadValue(0)
	if rerr == nil && stamp == machine.FirmwareBuild {
		e.replay()
		e.set.Version = stamp
		return false, nil
	}

	fmt.Fprintf(e.diag, "initializing configuration to defaults (build %.2f)\n",
		machine.FirmwareBuild)
	e.applyDefaults()
	if err := e.persistDefaults(); err != nil {
		return true, err
	}
	return true, nil
}

// InstallStatusDefaults replaces the status report slot vector with the
// given parameter tokens, one per slot, and persists it. Used to seed the
// boot configuration after a migration.
func (e *Engine) InstallStatusDefaults(tokens []string) error {
	srIdx, err := IndexOfToken("sr")
	if err != nil {
		return err
	}
	l := NewList()
	for _, tok := range tokens {
		i, err := IndexOfToken(tok)
		if err != nil {
			return err
		}
		ch, err := l.Append()
		if err != nil {
			return err
		}
		ch.Index = i
		ch.Value = 1
		ch.Type = TypeFloat
	}
	if err := e.setStatusReport(l); err != nil {
		return err
	}
	e.persistAfterSet(srIdx, l)
	return nil
}

// replay loads every persistable descriptor from the store through its set
// binding, so side effects (tick derivation, steps-per-unit, driver pushes)
// are re-applied exactly as a live set would.
func (e *Engine) replay() {
	for i := 1; i < startGroups; i++ {
		if !persistable(i) {
			continue
		}
		v, err := e.store.ReadValue(i)
		if err != nil {
			fmt.Fprintf(e.diag, "nvm read failed for %s (%d): %v\n", table[i].Token, i, err)
			continue
		}
		c := CmdObj{Index: i, Token: table[i].Token, Value: v, Type: TypeFloat}
		if err := e.setLeaf(i, &c); err != nil {
			fmt.Fprintf(e.diag, "replay failed for %s (%d): %v\n", table[i].Token, i, err)
		}
	}
}

// applyDefaults runs every descriptor's compiled-in default through its set
// binding.
func (e *Engine) applyDefaults() {
	for i := 1; i < startGroups; i++ {
		if !persistable(i) {
			continue
		}
		c := CmdObj{Index: i, Token: table[i].Token, Value: table[i].Default, Type: TypeFloat}
		e.setLeaf(i, &c)
	}
}

// persistDefaults writes every canonical value to the store and stamps the
// version slot last.
func (e *Engine) persistDefaults() error {
	for i := 1; i < startGroups; i++ {
		if !persistable(i) {
			continue
		}
		v, ok := e.canonicalValue(i)
		if !ok {
			continue
		}
		if err := e.store.WriteValue(i, v); err != nil {
			fmt.Fprintf(e.diag, "nvm write failed for %s (%d): %v\n", table[i].Token, i, err)
			return err
		}
		if i%25 == 0 {
			fmt.Fprint(e.diag, ".")
		}
	}
	fmt.Fprintln(e.diag)

	e.set.Version = machine.FirmwareBuild
	return e.store.WriteValue(0, machine.FirmwareBuild)
}
