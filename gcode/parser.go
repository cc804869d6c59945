// Package gcode parses and interprets the gcode subset the controller
// accepts: linear moves, units, homing, distance modes and origin shifts.
package gcode

// Command is one parsed gcode block.
type Command struct {
	Letter  byte             // 'G', 'M' or 'T'
	Number  int              // e.g. 1 for G1, 28 for G28
	Params  map[byte]float64 // axis and modal words (X, Y, Z, A, B, C, F, N...)
	Comment string
}

// Has reports whether a word is present in the command.
func (c *Command) Has(word byte) bool {
	_, ok := c.Params[word]
	return ok
}

// Param returns a word's value, or def when absent.
func (c *Command) Param(word byte, def float64) float64 {
	if v, ok := c.Params[word]; ok {
		return v
	}
	return def
}

// Parse decodes a single gcode line. Empty lines and pure comments return a
// nil command without error.
func Parse(line string) (*Command, error) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i >= len(line) {
		return nil, nil
	}

	if line[i] == ';' || line[i] == '(' {
		return nil, nil
	}

	cmd := &Command{Params: make(map[byte]float64)}

	if c := toUpper(line[i]); c == 'G' || c == 'M' || c == 'T' {
		cmd.Letter = c
		i++
		num, next := parseInt(line, i)
		if next > i {
			cmd.Number = num
			i = next
		}
	}

	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		if line[i] == ';' || line[i] == '(' {
			cmd.Comment = line[i:]
			break
		}
		if isLetter(line[i]) {
			word := toUpper(line[i])
			i++
			value, next := parseFloat(line, i)
			if next > i {
				cmd.Params[word] = value
				i = next
			}
		} else {
			i++
		}
	}
	return cmd, nil
}

func parseInt(s string, pos int) (int, int) {
	if pos >= len(s) {
		return 0, pos
	}
	negative := false
	switch s[pos] {
	case '-':
		negative = true
		pos++
	case '+':
		pos++
	}
	start := pos
	value := 0
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		value = value*10 + int(s[pos]-'0')
		pos++
	}
	if pos == start {
		return 0, start - 1
	}
	if negative {
		value = -value
	}
	return value, pos
}

func parseFloat(s string, pos int) (float64, int) {
	if pos >= len(s) {
		return 0, pos
	}
	negative := false
	switch s[pos] {
	case '-':
		negative = true
		pos++
	case '+':
		pos++
	}
	start := pos
	intPart := 0
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		intPart = intPart*10 + int(s[pos]-'0')
		pos++
	}
	value := float64(intPart)
	if pos < len(s) && s[pos] == '.' {
		pos++
		divisor := 1.0
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			divisor *= 10.0
			value += float64(s[pos]-'0') / divisor
			pos++
		}
	}
	if pos == start || (pos == start+1 && s[start] == '.') {
		return 0, start - 1
	}
	if negative {
		value = -value
	}
	return value, pos
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
