// Package profile loads machine settings profiles from YAML files and
// applies them through the parameter engine, one resolved parameter per
// entry, in file order.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Applier is the engine surface a profile drives. Values are applied exactly
// as a console set would be, including persistence and side effects.
type Applier interface {
	Apply(name string, value float64) error
}

// Profile is an ordered list of parameter assignments.
type Profile struct {
	Name    string
	Entries []Entry
}

// Entry is one token-to-value assignment.
type Entry struct {
	Name  string
	Value float64
}

// Load reads a profile from a YAML file. The document is a single mapping of
// parameter token (or friendly name) to numeric value; mapping order is
// preserved.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile: %s: %w", path, err)
	}
	p.Name = path
	return p, nil
}

// Parse decodes a profile document.
func Parse(data []byte) (*Profile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &Profile{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document must be a mapping of parameter to value")
	}

	p := &Profile{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]
		var v float64
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key.Value, err)
		}
		p.Entries = append(p.Entries, Entry{Name: key.Value, Value: v})
	}
	return p, nil
}

// Apply pushes every entry through the engine in order. The first failing
// entry aborts the application.
func (p *Profile) Apply(a Applier) error {
	for _, e := range p.Entries {
		if err := a.Apply(e.Name, e.Value); err != nil {
			return fmt.Errorf("profile: apply %q: %w", e.Name, err)
		}
	}
	return nil
}
