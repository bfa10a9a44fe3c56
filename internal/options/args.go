package options

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flag is a pass-through sbatch flag. An empty Value or "true" means a bare
// flag; "false" means the flag is left out.
type Flag struct {
	Name  string
	Value string
}

// Args renders f as command-line tokens. One-letter names get one dash.
func (f Flag) Args() []string {
	opt := Dashed(f.Name)
	switch f.Value {
	case "", "true":
		return []string{opt}
	case "false":
		return nil
	}
	return []string{opt, f.Value}
}

// Dashed prefixes name with "-" if it is one letter and "--" otherwise.
func Dashed(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

// AddFlags registers one pflag per spec on fs. Booleans become bool flags;
// every other kind is a string flag so coercion and its errors stay in
// Coerce.
func (s *Set) AddFlags(fs *pflag.FlagSet) {
	for _, sp := range s.specs {
		if fs.Lookup(sp.Name) != nil {
			continue
		}
		usage := sp.Usage
		if sp.Kind == Enum {
			usage += " {" + strings.Join(sp.Choices, ",") + "}"
		}
		if sp.Forward {
			usage += " (sbatch)"
		}
		if sp.Kind == Boolean {
			fs.BoolP(sp.Name, sp.Short, sp.Default.Bool(), usage)
			continue
		}
		fs.StringP(sp.Name, sp.Short, sp.Default.String(), usage)
	}
}

// FlagSet returns a fresh pflag.FlagSet holding the specs.
func (s *Set) FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	s.AddFlags(fs)
	return fs
}

// ParseArgs splits args into recognized options, pass-through flags and
// positional arguments. Recognized options (the specs plus any flag in
// extra) are parsed by pflag. Any other flag is passed through; it takes
// the following non-flag tokens as its value, joined by a space. A short
// flag with an attached value such as "-N2" is split into name and value.
// Tokens not attached to a flag and everything after "--" are positional.
//
// pflag.ErrHelp is returned unwrapped when -h or --help is given.
func ParseArgs(s *Set, args []string, extra *pflag.FlagSet) (Input, []string, error) {
	fs := s.FlagSet("options")
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if extra != nil {
		fs.AddFlagSet(extra)
	}

	var (
		known []string
		sp    splitter
	)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			sp.positional = append(sp.positional, args[i+1:]...)
			break
		}
		if !isFlag(a) {
			sp.value(a)
			continue
		}
		f, hasValue := lookupFlag(fs, a)
		if f == nil {
			if attachedShort(a) {
				sp.short(a)
			} else {
				sp.flag(a)
			}
			continue
		}
		sp.cur = -1
		known = append(known, a)
		if !hasValue && f.NoOptDefVal == "" && i+1 < len(args) {
			// pflag consumes the next token unconditionally, so a
			// negative number works as a value.
			known = append(known, args[i+1])
			i++
		}
	}

	if err := fs.Parse(known); err != nil {
		return Input{}, nil, err
	}

	in := Input{Flags: make(map[string]string), PassThrough: sp.flags}
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := s.Lookup(f.Name); ok {
			in.Flags[f.Name] = f.Value.String()
		}
	})
	return in, sp.positional, nil
}

// SplitFlags turns a token list like "--a 1 2 -b --c=x" into flags. A flag
// collects the following non-flag tokens as its value; "--c=x" carries its
// value inline. Tokens before the first flag are returned as positional.
func SplitFlags(tokens []string) ([]Flag, []string) {
	var sp splitter
	for _, tok := range tokens {
		if isFlag(tok) {
			sp.flag(tok)
		} else {
			sp.value(tok)
		}
	}
	return sp.flags, sp.positional
}

type splitter struct {
	flags      []Flag
	positional []string
	cur        int // index of the flag collecting values, or -1
	started    bool
}

func (s *splitter) flag(tok string) {
	name, value, inline := strings.Cut(strings.TrimLeft(tok, "-"), "=")
	s.flags = append(s.flags, Flag{Name: name, Value: value})
	s.cur = len(s.flags) - 1
	s.started = true
	if inline {
		s.cur = -1
	}
}

// short records a single-dash flag with its value attached, as in "-N2".
func (s *splitter) short(tok string) {
	s.flags = append(s.flags, Flag{Name: tok[1:2], Value: tok[2:]})
	s.cur = -1
	s.started = true
}

// attachedShort reports whether tok is a one-letter flag with its value
// attached, such as "-N2" or "-Jname".
func attachedShort(tok string) bool {
	return len(tok) > 2 && tok[0] == '-' && tok[1] != '-' && !strings.Contains(tok, "=")
}

func (s *splitter) value(tok string) {
	if !s.started || s.cur < 0 {
		s.positional = append(s.positional, tok)
		return
	}
	if f := &s.flags[s.cur]; f.Value == "" {
		f.Value = tok
	} else {
		f.Value += " " + tok
	}
}

func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	// "-1" and "-0.5" are values, not flags.
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return false
	}
	return true
}

// lookupFlag finds the pflag for a token such as "--time", "--time=1" or
// "-J". It also reports whether the token carries an inline value.
func lookupFlag(fs *pflag.FlagSet, tok string) (*pflag.Flag, bool) {
	if strings.HasPrefix(tok, "--") {
		name, _, inline := strings.Cut(tok[2:], "=")
		if name == "help" {
			return helpFlag, inline
		}
		return fs.Lookup(name), inline
	}
	short := tok[1:2]
	if short == "h" && fs.ShorthandLookup("h") == nil {
		return helpFlag, len(tok) > 2
	}
	f := fs.ShorthandLookup(short)
	return f, len(tok) > 2
}

// helpFlag stands in for pflag's implicit help flag.
var helpFlag = &pflag.Flag{Name: "help", NoOptDefVal: "true"}
