package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/google/shlex"
)

// Precision is the number of decimals floats get in positional arguments.
const Precision = 3

// Assemble builds the sbatch argument vector. Forwarded options come first
// in declaration order, then the pass-through flags in resolution order.
// A true boolean is emitted as a bare flag and a false one is left out.
func Assemble(r *Resolved) []string {
	return append(AssembleDeclared(r), PassThroughArgs(r)...)
}

// AssembleDeclared renders only the forwarded declared options.
func AssembleDeclared(r *Resolved) []string {
	var vec []string
	for _, sp := range r.specs.specs {
		if !sp.Forward {
			continue
		}
		v := r.Get(sp.Name)
		if !v.IsSet() {
			continue
		}
		if sp.Kind == Boolean {
			if v.Bool() {
				vec = append(vec, Dashed(sp.Name))
			}
			continue
		}
		vec = append(vec, Dashed(sp.Name), v.String())
	}
	return vec
}

// PassThroughArgs renders only the pass-through flags.
func PassThroughArgs(r *Resolved) []string {
	var vec []string
	for _, f := range r.passThrough {
		vec = append(vec, f.Args()...)
	}
	return vec
}

// RemoveOption drops every occurrence of the named options from vec. A
// token matches when it starts with one of the names, so "--dep" also
// removes "--dependency". Unless the value was given inline with '=', the
// following non-flag token is removed as its value.
func RemoveOption(vec []string, names ...string) []string {
	out := make([]string, 0, len(vec))
	for i := 0; i < len(vec); i++ {
		tok := vec[i]
		if !matchesAny(tok, names) {
			out = append(out, tok)
			continue
		}
		if !strings.Contains(tok, "=") && i+1 < len(vec) && !isFlag(vec[i+1]) {
			i++
		}
	}
	return out
}

func matchesAny(tok string, names []string) bool {
	if !strings.HasPrefix(tok, "-") {
		return false
	}
	for _, n := range names {
		if strings.HasPrefix(tok, n) {
			return true
		}
	}
	return false
}

// HasOption reports whether vec contains any of the named options, either
// as a separate token or with an inline '=' value.
func HasOption(vec []string, names ...string) bool {
	for _, tok := range vec {
		name, _, _ := strings.Cut(tok, "=")
		for _, n := range names {
			if name == n {
				return true
			}
		}
	}
	return false
}

// PosArgs renders positional arguments for the batch script. Floats use
// Precision decimals and booleans become 1 or 0, matching what the bash
// scripts parse.
func PosArgs(values ...any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', Precision, 64))
		case float32:
			out = append(out, strconv.FormatFloat(float64(x), 'f', Precision, 32))
		case bool:
			if x {
				out = append(out, "1")
			} else {
				out = append(out, "0")
			}
		case int:
			out = append(out, strconv.Itoa(x))
		case Value:
			switch x.Kind() {
			case Boolean:
				out = append(out, PosArgs(x.Bool())...)
			case Float:
				out = append(out, PosArgs(x.Float())...)
			default:
				out = append(out, x.String())
			}
		default:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}

// QuoteCommand renders a command line for display, quoting each word so
// it can be pasted into a shell.
func QuoteCommand(argv []string) string {
	return shellescape.QuoteCommand(argv)
}

// SplitShell splits s into words using shell quoting rules.
func SplitShell(s string) ([]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("cannot split %q: %w", s, err)
	}
	return words, nil
}
