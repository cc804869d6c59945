package params

import (
	"strconv"
	"strings"
)

// separators accepted between a parameter name and its value.
const separators = " =:|\t"

// Parse decodes one text-mode command line into the list's head object and
// returns the resolved descriptor index.
//
// The line shape is "$name" for a query and "$name=value" for a set, with
// '=' interchangeable with space, ':', '|' or tab. The leading '$' is
// optional. Names are case-insensitive. A bare "$" queries the system group.
// Group names always parse as parent queries; gcode blocks keep their value
// text verbatim.
func (e *Engine) Parse(line string, l *List) (int, error) {
	c := l.Reset()

	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		s = "sys"
	}

	nameRaw := s
	valueRaw := ""
	if k := strings.IndexAny(s, separators); k >= 0 {
		nameRaw = s[:k]
		valueRaw = strings.TrimLeft(s[k+1:], separators)
	}

	name := strings.ToLower(nameRaw)
	i, err := IndexOf(name)
	if err != nil {
		return -1, err
	}

	c.Index = i
	c.Name = name
	c.Token = table[i].Token

	switch {
	case RegionOf(i) == RegionGroup:
		c.Type = TypeParent

	case valueRaw == "":
		c.Type = TypeNull

	case table[i].Set == SetGcodeRun:
		c.String = valueRaw
		c.Type = TypeString

	default:
		// take the leading field only; trailing text is ignored
		field := valueRaw
		if k := strings.IndexAny(field, separators); k >= 0 {
			field = field[:k]
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			// an unparseable value degrades to a pure query
			c.Type = TypeNull
			break
		}
		c.Value = v
		c.Type = TypeFloat
	}
	return i, nil
}

// Exec runs one text-mode command end to end: parse, get or set, persist
// on set, then print. "$$" lists every group.
func (e *Engine) Exec(line string) error {
	if strings.TrimSpace(line) == "$$" {
		return e.PrintAll()
	}

	l := NewList()
	i, err := e.Parse(line, l)
	if err != nil {
		return err
	}

	h := l.Head()
	if h.Type == TypeNull || h.Type == TypeParent {
		if err := e.Get(i, l); err != nil {
			return err
		}
		return e.Print(i)
	}

	if err := e.Set(i, l); err != nil {
		return err
	}
	e.persistAfterSet(i, l)
	return e.Print(i)
}

// PrintAll renders every parameter group in table order, the "$$" listing.
// The query group is skipped; it reads live motion state, not configuration.
func (e *Engine) PrintAll() error {
	for i := startGroups; i < len(table); i++ {
		if table[i].Get == GetQueryGroup {
			continue
		}
		if err := e.print(i); err != nil {
			return err
		}
	}
	return nil
}

// Apply resolves a parameter by token or name and performs a set-and-persist
// with the given value. Used by profile loading.
func (e *Engine) Apply(name string, value float64) error {
	i, err := IndexOf(strings.ToLower(name))
	if err != nil {
		return err
	}
	l := NewList()
	h := l.Head()
	h.Index = i
	h.Token = table[i].Token
	h.Name = table[i].Name
	h.Value = value
	h.Type = TypeFloat
	if err := e.Set(i, l); err != nil {
		return err
	}
	e.persistAfterSet(i, l)
	return nil
}
