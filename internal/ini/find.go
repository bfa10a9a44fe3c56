package ini

import (
	"os"
	"path/filepath"
)

// DefaultName is the file name searched for when none is configured.
const DefaultName = "hpcssrc.ini"

// UserDir is the directory below $HOME holding the per-user config file.
const UserDir = ".hpcss"

// Candidate is one location probed by FindConfig.
type Candidate struct {
	Type   string // "cwd", "user" or "project"
	Path   string
	Exists bool
}

// Candidates lists the locations FindConfig probes, in search order.
// An absolute name is probed as given instead of relative to cwd.
func Candidates(cwd, home, projectRoot, name string) []Candidate {
	if name == "" {
		name = DefaultName
	}
	first := name
	if !filepath.IsAbs(name) {
		first = filepath.Join(cwd, name)
	}

	var out []Candidate
	add := func(typ, path string) {
		out = append(out, Candidate{Type: typ, Path: path, Exists: isFile(path)})
	}
	add("cwd", first)
	if home != "" {
		add("user", filepath.Join(home, UserDir, filepath.Base(name)))
	}
	if projectRoot != "" {
		add("project", filepath.Join(projectRoot, filepath.Base(name)))
	}
	return out
}

// FindConfig returns the first existing config file among the current
// working directory, $HOME/.hpcss and the project root. It takes every
// environment dependency as a parameter and touches no global state.
func FindConfig(cwd, home, projectRoot, name string) (string, bool) {
	for _, c := range Candidates(cwd, home, projectRoot, name) {
		if c.Exists {
			return c.Path, true
		}
	}
	return "", false
}

// Load finds and parses the config file. When no candidate exists an empty
// document is returned; configuration is optional.
func Load(cwd, home, projectRoot, name string) (*Document, error) {
	path, ok := FindConfig(cwd, home, projectRoot, name)
	if !ok {
		return NewDocument(), nil
	}
	return ParseFile(path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
