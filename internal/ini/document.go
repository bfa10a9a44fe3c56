// Package ini reads the hpcssrc.ini job configuration file.
//
// Section names are case-folded and trimmed. Option names keep their case.
// Values are kept as raw strings; type coercion is the caller's job.
package ini

import "strings"

// Section holds the options of one [section] in file order.
type Section struct {
	Name   string
	keys   []string
	values map[string]string
	lines  map[string]int
}

func newSection(name string) *Section {
	return &Section{
		Name:   name,
		values: make(map[string]string),
		lines:  make(map[string]int),
	}
}

// Get returns the raw value of key and whether it was present.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Line returns the line number the key was defined on, or 0.
func (s *Section) Line(key string) int {
	return s.lines[key]
}

// Keys returns the option names in file order.
func (s *Section) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Section) set(key, value string, line int) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	s.lines[key] = line
}

// Document is a parsed configuration file. The zero value is not usable;
// use NewDocument or Parse.
type Document struct {
	// Path is the file the document was read from; empty for a document
	// that was not loaded from disk.
	Path     string
	sections []*Section
	index    map[string]*Section
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{index: make(map[string]*Section)}
}

// NormalizeSection folds a section name the way headers are folded.
func NormalizeSection(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Section looks up a section by name (case-insensitive).
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.index[NormalizeSection(name)]
	return s, ok
}

// Sections returns the section names in file order.
func (d *Document) Sections() []string {
	names := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns the raw value of key in section.
func (d *Document) Lookup(section, key string) (string, bool) {
	s, ok := d.Section(section)
	if !ok {
		return "", false
	}
	return s.Get(key)
}

// Empty reports whether the document has no sections.
func (d *Document) Empty() bool {
	return len(d.sections) == 0
}

func (d *Document) addSection(name string) *Section {
	s := newSection(name)
	d.sections = append(d.sections, s)
	d.index[name] = s
	return s
}
