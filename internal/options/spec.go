// Package options resolves typed submit options from built-in defaults, the
// INI config file and the command line, and turns them into sbatch arguments.
package options

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the value type of an option.
type Kind int

const (
	String Kind = iota
	Integer
	Boolean
	Path
	Enum
	Float
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Path:
		return "path"
	case Enum:
		return "enum"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// PathCheck selects the pre-flight existence check for Path options.
type PathCheck int

const (
	NoCheck PathCheck = iota
	ExistingFile
	ExistingDir
)

// Spec describes one recognized option.
type Spec struct {
	Name    string    // Long flag name and INI key, e.g. "ntasks-per-node"
	Short   string    // Optional one-letter flag alias
	Kind    Kind      // Value type
	Choices []string  // Allowed tokens for Enum
	Default Value     // Zero Value means "no default"
	Forward bool      // Passed to sbatch instead of consumed locally
	Require bool      // Resolution fails when no source sets it
	Check   PathCheck // Existence check for Path options
	Usage   string    // Help text
}

// Expected describes the accepted values, for error messages.
func (s Spec) Expected() string {
	if s.Kind == Enum {
		return "one of {" + strings.Join(s.Choices, ", ") + "}"
	}
	if s.Kind == Boolean {
		return "boolean (true or false)"
	}
	return s.Kind.String()
}

// Set is an ordered, immutable collection of Specs.
type Set struct {
	specs []Spec
	index map[string]int
	short map[string]int
}

// NewSet validates specs and returns them as a Set. Declaration order is kept;
// it is the order forwarded options are emitted in.
func NewSet(specs ...Spec) (*Set, error) {
	s := &Set{
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
		short: make(map[string]int),
	}
	for _, sp := range specs {
		if err := validateSpec(sp); err != nil {
			return nil, err
		}
		if _, dup := s.index[sp.Name]; dup {
			return nil, fmt.Errorf("option %q declared twice", sp.Name)
		}
		if sp.Short != "" {
			if _, dup := s.short[sp.Short]; dup {
				return nil, fmt.Errorf("short flag -%s declared twice", sp.Short)
			}
			s.short[sp.Short] = len(s.specs)
		}
		s.index[sp.Name] = len(s.specs)
		s.specs = append(s.specs, sp)
	}
	return s, nil
}

// MustNewSet is like NewSet but panics on invalid declarations.
func MustNewSet(specs ...Spec) *Set {
	s, err := NewSet(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

func validateSpec(sp Spec) error {
	if sp.Name == "" || strings.HasPrefix(sp.Name, "-") {
		return fmt.Errorf("invalid option name %q", sp.Name)
	}
	if len(sp.Short) > 1 {
		return fmt.Errorf("option %q: short flag must be one letter", sp.Name)
	}
	if sp.Kind == Enum && len(sp.Choices) == 0 {
		return fmt.Errorf("option %q: enum without choices", sp.Name)
	}
	if sp.Check != NoCheck && sp.Kind != Path {
		return fmt.Errorf("option %q: existence check on a %s option", sp.Name, sp.Kind)
	}
	if sp.Require && sp.Default.IsSet() {
		return fmt.Errorf("option %q: required option with a default", sp.Name)
	}
	if sp.Default.IsSet() {
		if sp.Default.Kind() != sp.Kind {
			return fmt.Errorf("option %q: %s default for a %s option", sp.Name, sp.Default.Kind(), sp.Kind)
		}
		if sp.Kind == Enum && !slices.Contains(sp.Choices, sp.Default.String()) {
			return fmt.Errorf("option %q: default %q is not a valid choice", sp.Name, sp.Default.String())
		}
		// A forwarded true flag could never be switched off again: false is
		// expressed by omission.
		if sp.Kind == Boolean && sp.Forward && sp.Default.Bool() {
			return fmt.Errorf("option %q: forwarded boolean must default to false", sp.Name)
		}
	}
	return nil
}

// Specs returns the specs in declaration order.
func (s *Set) Specs() []Spec {
	return slices.Clone(s.specs)
}

// Lookup returns the spec with the given long name.
func (s *Set) Lookup(name string) (Spec, bool) {
	i, ok := s.index[name]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// LookupShort returns the spec with the given one-letter alias.
func (s *Set) LookupShort(short string) (Spec, bool) {
	i, ok := s.short[short]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// lookupKey maps a config-file key to a spec. Keys may use '_' where the
// option name uses '-'.
func (s *Set) lookupKey(key string) (Spec, bool) {
	if sp, ok := s.Lookup(key); ok {
		return sp, true
	}
	return s.Lookup(strings.ReplaceAll(key, "_", "-"))
}
