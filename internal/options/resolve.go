package options

import (
	"fmt"
	"slices"
	"strings"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/ini"
)

// SourceKind tells which layer produced a resolved value.
type SourceKind int

const (
	FromDefault SourceKind = iota
	FromConfig
	FromCLI
)

// Source records where a value came from.
type Source struct {
	Kind    SourceKind
	Section string // config section, for FromConfig
	File    string
	Line    int
}

func (s Source) String() string {
	switch s.Kind {
	case FromCLI:
		return "command line"
	case FromConfig:
		loc := "[" + s.Section + "]"
		if s.File != "" {
			loc += fmt.Sprintf(" in %s:%d", s.File, s.Line)
		}
		return "config " + loc
	default:
		return "default"
	}
}

// Sections returns the section chain for top and a hierarchy path, from
// least to most specific: Sections("submit", "simulation", "gmx") is
// [submit submit.simulation submit.simulation.gmx].
func Sections(top string, path ...string) []string {
	out := []string{top}
	cur := top
	for _, p := range path {
		cur += "." + p
		out = append(out, cur)
	}
	return out
}

// Input is what the command line contributed.
type Input struct {
	// Flags holds the raw text of recognized options, keyed by spec name.
	Flags map[string]string
	// PassThrough holds unrecognized flags in command-line order.
	PassThrough []Flag
}

// Resolver merges defaults, config sections and command-line input.
type Resolver struct {
	Specs *Set
	// Known sections hold declared options, least specific first.
	Known []string
	// Unknown sections hold sbatch flags passed through as-is, least
	// specific first.
	Unknown []string
}

// Resolve computes the final option values. Per key, the command line wins
// over the most specific config section that sets it, which wins over its
// ancestors, which win over the built-in default. Keys are never merged
// across whole sections.
func (r Resolver) Resolve(doc *ini.Document, in Input) (*Resolved, error) {
	if doc == nil {
		doc = ini.NewDocument()
	}
	res := &Resolved{
		specs:   r.Specs,
		values:  make(map[string]Value),
		sources: make(map[string]Source),
	}

	var missing []string
	for _, sp := range r.Specs.specs {
		v, src, err := r.resolveOne(doc, sp, in)
		if err != nil {
			return nil, err
		}
		if !v.IsSet() {
			if sp.Require {
				missing = append(missing, sp.Name)
			}
			continue
		}
		res.values[sp.Name] = v
		res.sources[sp.Name] = src
	}
	if len(missing) > 0 {
		return nil, &RequiredError{Options: missing}
	}

	res.passThrough = r.passThrough(doc, in.PassThrough)
	res.unrecognized = r.unrecognized(doc)
	return res, nil
}

func (r Resolver) resolveOne(doc *ini.Document, sp Spec, in Input) (Value, Source, error) {
	if raw, ok := in.Flags[sp.Name]; ok {
		src := Source{Kind: FromCLI}
		v, err := Coerce(sp, raw)
		return v, src, withSource(err, src)
	}

	chain := slices.Clone(r.Known)
	if sp.Forward {
		// A declared sbatch option may also be set in the pass-through
		// sections; the submit sections still take priority.
		chain = append(slices.Clone(r.Unknown), chain...)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		sec, ok := doc.Section(chain[i])
		if !ok {
			continue
		}
		key, ok := sectionKey(sec, sp.Name)
		if !ok {
			continue
		}
		raw, _ := sec.Get(key)
		src := Source{Kind: FromConfig, Section: sec.Name, File: doc.Path, Line: sec.Line(key)}
		v, err := Coerce(sp, raw)
		return v, src, withSource(err, src)
	}

	return sp.Default, Source{Kind: FromDefault}, nil
}

// sectionKey finds name in sec, accepting '_' for '-'.
func sectionKey(sec *ini.Section, name string) (string, bool) {
	if _, ok := sec.Get(name); ok {
		return name, true
	}
	alt := strings.ReplaceAll(name, "-", "_")
	if _, ok := sec.Get(alt); ok {
		return alt, true
	}
	return "", false
}

func withSource(err error, src Source) error {
	if e, ok := err.(*InvalidValueError); ok {
		e.Source = src
		return e
	}
	return err
}

// passThrough merges the pass-through sections from least to most specific,
// keeping the file order of first appearance, then appends the command-line
// flags. A command-line flag replaces any earlier entry of the same name.
func (r Resolver) passThrough(doc *ini.Document, cli []Flag) []Flag {
	var out []Flag
	pos := make(map[string]int)
	for _, name := range r.Unknown {
		sec, ok := doc.Section(name)
		if !ok {
			continue
		}
		for _, key := range sec.Keys() {
			if sp, ok := r.Specs.lookupKey(key); ok && sp.Forward {
				continue
			}
			val, _ := sec.Get(key)
			if i, ok := pos[key]; ok {
				out[i].Value = val
				continue
			}
			pos[key] = len(out)
			out = append(out, Flag{Name: key, Value: val})
		}
	}

	for _, f := range cli {
		out = slices.DeleteFunc(out, func(g Flag) bool { return g.Name == f.Name })
		out = append(out, f)
	}
	return out
}

// unrecognized lists keys in the known sections that match no spec.
func (r Resolver) unrecognized(doc *ini.Document) []string {
	var out []string
	for _, name := range r.Known {
		sec, ok := doc.Section(name)
		if !ok {
			continue
		}
		for _, key := range sec.Keys() {
			if _, ok := r.Specs.lookupKey(key); !ok {
				out = append(out, fmt.Sprintf("[%s] %s", sec.Name, key))
			}
		}
	}
	return out
}

// Resolved is the outcome of a resolution. It is immutable; the With
// methods return modified copies.
type Resolved struct {
	specs        *Set
	values       map[string]Value
	sources      map[string]Source
	passThrough  []Flag
	unrecognized []string
}

// Set returns the specs the values were resolved against.
func (r *Resolved) Set() *Set { return r.specs }

// Get returns the value of name; the zero Value if unset.
func (r *Resolved) Get(name string) Value { return r.values[name] }

// Source returns where the value of name came from.
func (r *Resolved) Source(name string) Source { return r.sources[name] }

// Text returns the rendered value of name, or "" if unset.
func (r *Resolved) Text(name string) string { return r.values[name].String() }

// Int returns the integer value of name.
func (r *Resolved) Int(name string) int { return r.values[name].Int() }

// Float returns the float value of name.
func (r *Resolved) Float(name string) float64 { return r.values[name].Float() }

// Bool returns the boolean value of name.
func (r *Resolved) Bool(name string) bool { return r.values[name].Bool() }

// PassThrough returns the pass-through flags in emission order.
func (r *Resolved) PassThrough() []Flag { return slices.Clone(r.passThrough) }

// Unrecognized returns config keys that no option declares, as
// "[section] key".
func (r *Resolved) Unrecognized() []string { return slices.Clone(r.unrecognized) }

// HasFlag reports whether any pass-through flag has one of the given names.
func (r *Resolved) HasFlag(names ...string) bool {
	for _, f := range r.passThrough {
		if slices.Contains(names, f.Name) {
			return true
		}
	}
	return false
}

// WithValue returns a copy with name set to v.
func (r *Resolved) WithValue(name string, v Value) (*Resolved, error) {
	sp, ok := r.specs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown option %q", name)
	}
	if v.Kind() != sp.Kind {
		return nil, fmt.Errorf("option %q: cannot set %s value on %s option", name, v.Kind(), sp.Kind)
	}
	out := r.clone()
	out.values[name] = v
	out.sources[name] = Source{Kind: FromDefault}
	return out, nil
}

// WithFlags returns a copy with extra pass-through flags appended.
func (r *Resolved) WithFlags(extra ...Flag) *Resolved {
	out := r.clone()
	out.passThrough = append(out.passThrough, extra...)
	return out
}

func (r *Resolved) clone() *Resolved {
	out := &Resolved{
		specs:        r.specs,
		values:       make(map[string]Value, len(r.values)),
		sources:      make(map[string]Source, len(r.sources)),
		passThrough:  slices.Clone(r.passThrough),
		unrecognized: slices.Clone(r.unrecognized),
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	for k, v := range r.sources {
		out.sources[k] = v
	}
	return out
}
