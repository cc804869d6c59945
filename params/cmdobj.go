package params

import "errors"

// ValueType tags the payload carried by a CmdObj.
type ValueType uint8

const (
	TypeNull   ValueType = iota // no value (pure query)
	TypeInt                     // integer payload in Value
	TypeFloat                   // float payload in Value
	TypeString                  // text payload in String
	TypeParent                  // group marker; children follow in the List
)

// MaxObjects bounds a group result: one parent plus its children. The largest
// group (system) stays well inside this.
const MaxObjects = 24

// ErrListFull is returned when a group expansion exceeds MaxObjects.
var ErrListFull = errors.New("params: command list full")

// CmdObj is the typed value carrier passed through every get/set/print call.
// Objects are created fresh per operation and never outlive the request.
type CmdObj struct {
	Index  int    // resolved descriptor index, or -1
	Name   string // friendly name used or derived during resolution
	Token  string // mnemonic token (group prefix stripped for group children)
	Value  float64
	Type   ValueType
	String string // auxiliary text payload when Type is TypeString
}

// List is a bounds-checked, slice-backed parent-and-children chain.
// The head object sits at position 0; group children
// follow it in ascending descriptor-index order. Children never have
// children of their own.
type List struct {
	objs []CmdObj
}

// NewList returns an empty list holding a cleared head object.
func NewList() *List {
	l := &List{objs: make([]CmdObj, 1, MaxObjects)}
	l.Reset()
	return l
}

// Reset clears the list down to a single zeroed head object and returns it.
func (l *List) Reset() *CmdObj {
	l.objs = l.objs[:1]
	l.objs[0] = CmdObj{Index: -1, Type: TypeNull}
	return &l.objs[0]
}

// Head returns the first object in the list.
func (l *List) Head() *CmdObj { return &l.objs[0] }

// Append adds a cleared child object and returns it.
func (l *List) Append() (*CmdObj, error) {
	if len(l.objs) >= MaxObjects {
		return nil, ErrListFull
	}
	l.objs = append(l.objs, CmdObj{Index: -1, Type: TypeNull})
	return &l.objs[len(l.objs)-1], nil
}

// Children returns the objects after the head, in append order.
func (l *List) Children() []CmdObj { return l.objs[1:] }

// Len returns the total object count including the head.
func (l *List) Len() int { return len(l.objs) }
