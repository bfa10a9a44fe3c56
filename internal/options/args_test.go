package options

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/pflag"
)

func TestParseArgs(t *testing.T) {
	s := testSet(t)

	tests := []struct {
		name    string
		args    []string
		wantIn  Input
		wantPos []string
	}{
		{
			name:   "known flags",
			args:   []string{"--time", "01:00:00", "--exclusive", "--nresubmits=3"},
			wantIn: Input{Flags: map[string]string{"time": "01:00:00", "exclusive": "true", "nresubmits": "3"}},
		},
		{
			name: "unknown flag collects values",
			args: []string{"--constraint", "a", "b", "--hold", "--account=proj"},
			wantIn: Input{
				Flags: map[string]string{},
				PassThrough: []Flag{
					{Name: "constraint", Value: "a b"},
					{Name: "hold"},
					{Name: "account", Value: "proj"},
				},
			},
		},
		{
			name: "short unknown flag",
			args: []string{"-J", "myjob"},
			wantIn: Input{
				Flags:       map[string]string{},
				PassThrough: []Flag{{Name: "J", Value: "myjob"}},
			},
		},
		{
			name:    "positional before flags and after separator",
			args:    []string{"job.sh", "--time", "1", "--", "a", "--b"},
			wantIn:  Input{Flags: map[string]string{"time": "1"}},
			wantPos: []string{"job.sh", "a", "--b"},
		},
		{
			name: "known flag ends value collection",
			args: []string{"--hold", "--time", "2", "x"},
			wantIn: Input{
				Flags:       map[string]string{"time": "2"},
				PassThrough: []Flag{{Name: "hold"}},
			},
			wantPos: []string{"x"},
		},
		{
			name: "short flags with attached values",
			args: []string{"-N2", "-Jname", "job.sh"},
			wantIn: Input{
				Flags:       map[string]string{},
				PassThrough: []Flag{{Name: "N", Value: "2"}, {Name: "J", Value: "name"}},
			},
			wantPos: []string{"job.sh"},
		},
		{
			name:   "negative number is a value",
			args:   []string{"--nresubmits", "-1"},
			wantIn: Input{Flags: map[string]string{"nresubmits": "-1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, pos, err := ParseArgs(s, tt.args, nil)
			if err != nil {
				t.Fatalf("ParseArgs() error: %v", err)
			}
			if diff := cmp.Diff(tt.wantIn, in); diff != "" {
				t.Errorf("Input mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantPos, pos); diff != "" {
				t.Errorf("positional mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgsExtraFlags(t *testing.T) {
	extra := pflag.NewFlagSet("global", pflag.ContinueOnError)
	dry := extra.Bool("dry-run", false, "")
	ini := extra.String("ini", "", "")

	in, _, err := ParseArgs(testSet(t), []string{"--dry-run", "--ini", "x.ini", "--time", "5"}, extra)
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	if !*dry || *ini != "x.ini" {
		t.Errorf("extra flags not applied: dry-run=%v ini=%q", *dry, *ini)
	}
	if diff := cmp.Diff(map[string]string{"time": "5"}, in.Flags); diff != "" {
		t.Errorf("Flags mismatch (-want +got):\n%s", diff)
	}
	if len(in.PassThrough) != 0 {
		t.Errorf("extra flags leaked into pass-through: %v", in.PassThrough)
	}
}

func TestParseArgsHelp(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		_, _, err := ParseArgs(testSet(t), []string{"--time", "1", arg}, nil)
		if !errors.Is(err, pflag.ErrHelp) {
			t.Errorf("ParseArgs(%s) error = %v; want pflag.ErrHelp", arg, err)
		}
	}
}

func TestSplitFlags(t *testing.T) {
	flags, pos := SplitFlags([]string{"pre", "--a", "1", "2", "-b", "--c=x", "--d=false"})
	want := []Flag{{Name: "a", Value: "1 2"}, {Name: "b"}, {Name: "c", Value: "x"}, {Name: "d", Value: "false"}}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pre"}, pos); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagArgs(t *testing.T) {
	tests := []struct {
		flag Flag
		want []string
	}{
		{Flag{Name: "hold"}, []string{"--hold"}},
		{Flag{Name: "hold", Value: "true"}, []string{"--hold"}},
		{Flag{Name: "hold", Value: "false"}, nil},
		{Flag{Name: "J", Value: "x"}, []string{"-J", "x"}},
		{Flag{Name: "constraint", Value: "a b"}, []string{"--constraint", "a b"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.flag.Args()); diff != "" {
			t.Errorf("%+v.Args() mismatch (-want +got):\n%s", tt.flag, diff)
		}
	}
}

// Resolving, assembling and parsing the vector again yields the same
// forwarded values.
func TestAssembleRoundTrip(t *testing.T) {
	s := testSet(t)
	inputs := []Input{
		{},
		{Flags: map[string]string{"time": "12:00:00", "partition": "gpu"}},
		{Flags: map[string]string{"exclusive": "true", "mail-type": "ALL", "nodes": "2-4"}},
		{Flags: map[string]string{"exclusive": "false", "time": "1-00:00:00"}},
		{PassThrough: []Flag{{Name: "qos", Value: "long"}, {Name: "d", Value: "singleton"}}},
		{Flags: map[string]string{"time": "1"}, PassThrough: []Flag{{Name: "J", Value: "run"}, {Name: "hold"}}},
	}
	r := Resolver{Specs: s, Known: []string{"submit"}}
	for _, input := range inputs {
		flags := input.Flags
		first, err := r.Resolve(nil, input)
		if err != nil {
			t.Fatalf("Resolve(%v) error: %v", flags, err)
		}
		vec := Assemble(first)
		in, pos, err := ParseArgs(s, vec, nil)
		if err != nil {
			t.Fatalf("ParseArgs(%v) error: %v", vec, err)
		}
		if len(pos) != 0 {
			t.Fatalf("vector %v left stray positional tokens: %v", vec, pos)
		}
		if diff := cmp.Diff(first.PassThrough(), in.PassThrough, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%v: pass-through mismatch after round trip (-want +got):\n%s", vec, diff)
		}
		second, err := r.Resolve(nil, in)
		if err != nil {
			t.Fatalf("re-Resolve(%v) error: %v", vec, err)
		}
		for _, sp := range s.Specs() {
			if !sp.Forward {
				continue
			}
			a, b := first.Get(sp.Name), second.Get(sp.Name)
			if a.IsSet() != b.IsSet() || a.String() != b.String() {
				// An explicit false and an unset boolean are equivalent.
				if sp.Kind == Boolean && !a.Bool() && !b.Bool() {
					continue
				}
				t.Errorf("%v: %s = %q after round trip; want %q", flags, sp.Name, b, a)
			}
		}
	}
}

// Short flags given with attached values reach the assembled vector as
// separate name and value tokens.
func TestAssembleAttachedShortFlags(t *testing.T) {
	s := testSet(t)
	in, pos, err := ParseArgs(s, []string{"-N2", "-Jname", "job.sh"}, nil)
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	if diff := cmp.Diff([]string{"job.sh"}, pos); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	res, err := Resolver{Specs: s, Known: []string{"submit"}}.Resolve(nil, in)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"-N", "2", "-J", "name"}
	if diff := cmp.Diff(want, PassThroughArgs(res)); diff != "" {
		t.Errorf("PassThroughArgs() mismatch (-want +got):\n%s", diff)
	}
}
