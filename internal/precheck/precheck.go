// Package precheck verifies that input files and directories exist before
// anything is submitted.
package precheck

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// MissingInputError reports a required path that does not exist or has the
// wrong type.
type MissingInputError struct {
	Option string // option or role the path belongs to, e.g. "structure"
	Path   string
	Kind   options.PathCheck
}

func (e *MissingInputError) Error() string {
	what := "file"
	if e.Kind == options.ExistingDir {
		what = "directory"
	}
	if e.Option == "" {
		return fmt.Sprintf("no such %s: %s", what, e.Path)
	}
	return fmt.Sprintf("%s: no such %s: %s", e.Option, what, e.Path)
}

// IsMissingInputError checks if the error is, or wraps, a MissingInputError.
func IsMissingInputError(err error) bool {
	var e *MissingInputError
	return errors.As(err, &e)
}

// Requirement is one path a command needs.
type Requirement struct {
	Option string
	Path   string
	Kind   options.PathCheck
}

// File returns a requirement for an existing regular file.
func File(option, path string) Requirement {
	return Requirement{Option: option, Path: path, Kind: options.ExistingFile}
}

// Dir returns a requirement for an existing directory.
func Dir(option, path string) Requirement {
	return Requirement{Option: option, Path: path, Kind: options.ExistingDir}
}

// Files checks every requirement and reports all failures at once. The
// returned error is a *multierror.Error of *MissingInputError, or nil.
func Files(reqs ...Requirement) error {
	var merr *multierror.Error
	for _, r := range reqs {
		if ok := exists(r); !ok {
			utils.PrintDebug("missing %s %s", r.Option, r.Path)
			merr = multierror.Append(merr, &MissingInputError{Option: r.Option, Path: r.Path, Kind: r.Kind})
		}
	}
	return merr.ErrorOrNil()
}

// Check verifies every set Path option of res that carries an existence
// check.
func Check(res *options.Resolved) error {
	var reqs []Requirement
	for _, sp := range res.Set().Specs() {
		if sp.Kind != options.Path || sp.Check == options.NoCheck {
			continue
		}
		v := res.Get(sp.Name)
		if !v.IsSet() {
			continue
		}
		reqs = append(reqs, Requirement{Option: "--" + sp.Name, Path: v.String(), Kind: sp.Check})
	}
	return Files(reqs...)
}

// Missing returns the individual failures of an error returned by Files or
// Check.
func Missing(err error) []*MissingInputError {
	var out []*MissingInputError
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			var m *MissingInputError
			if errors.As(e, &m) {
				out = append(out, m)
			}
		}
		return out
	}
	var m *MissingInputError
	if errors.As(err, &m) {
		out = append(out, m)
	}
	return out
}

func exists(r Requirement) bool {
	if r.Kind == options.ExistingDir {
		return utils.DirExists(r.Path)
	}
	return utils.FileExists(r.Path)
}
