package params

import "strings"

// expandPrefixGroup fills l with every descriptor whose token starts with the
// group token. Members always precede their group in the table, so the scan
// stops at the group's own index. Child tokens are reported relative to the
// group, "xfr" under group "x" becomes "fr".
func (e *Engine) expandPrefixGroup(i int, c *CmdObj, l *List) error {
	c.Type = TypeParent
	prefix := table[i].Token
	for j := 0; j < i; j++ {
		if !strings.HasPrefix(table[j].Token, prefix) {
			continue
		}
		child, err := l.Append()
		if err != nil {
			return err
		}
		if err := e.GetInto(j, child); err != nil {
			return err
		}
		child.Token = strings.TrimPrefix(child.Token, prefix)
	}
	return nil
}

// expandFlagGroup fills l with every descriptor carrying flag f. Membership
// groups span unrelated tokens, so children keep their full tokens.
func (e *Engine) expandFlagGroup(i int, c *CmdObj, l *List, f Flag) error {
	c.Type = TypeParent
	for j := range table {
		if table[j].Flags&f == 0 {
			continue
		}
		child, err := l.Append()
		if err != nil {
			return err
		}
		if err := e.GetInto(j, child); err != nil {
			return err
		}
	}
	return nil
}

// distribute applies each child of a group set as an individual leaf set.
func (e *Engine) distribute(l *List) error {
	children := l.Children()
	for k := range children {
		ch := &children[k]
		if ch.Type == TypeNull {
			continue
		}
		if err := e.setLeaf(ch.Index, ch); err != nil {
			return err
		}
	}
	return nil
}

// setStatusReport replaces the status report slot vector. Slot j is filled
// with child j's parameter index when that child carries a truthy value, and
// left empty otherwise. The previous vector is discarded wholesale.
func (e *Engine) setStatusReport(l *List) error {
	for j := range e.set.StatusReport {
		e.set.StatusReport[j] = 0
	}
	children := l.Children()
	for j := range children {
		if j >= len(e.set.StatusReport) {
			break
		}
		ch := &children[j]
		if ch.Type != TypeNull && ch.Value != 0 {
			e.set.StatusReport[j] = uint32(ch.Index)
		}
	}
	return nil
}

// printGroup expands the group into a scratch list and prints each child.
func (e *Engine) printGroup(i int) error {
	l := NewList()
	if err := e.Get(i, l); err != nil {
		return err
	}
	children := l.Children()
	for k := range children {
		if err := e.print(children[k].Index); err != nil {
			return err
		}
	}
	return nil
}
