package precheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
)

func TestFilesCollectsAllFailures(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "system.top")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Files(
		File("topology", file),
		File("structure", filepath.Join(dir, "missing.gro")),
		Dir("bash", dir),
		Dir("lmod", filepath.Join(dir, "nolmod")),
		File("dir as file", dir),
	)
	if err == nil {
		t.Fatal("Files() = nil; want error")
	}
	if !IsMissingInputError(err) {
		t.Errorf("IsMissingInputError(%v) = false", err)
	}

	var got []string
	for _, m := range Missing(err) {
		got = append(got, m.Option)
	}
	want := []string{"structure", "lmod", "dir as file"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("missing options mismatch (-want +got):\n%s", diff)
	}
}

func TestFilesAllPresent(t *testing.T) {
	dir := t.TempDir()
	if err := Files(Dir("work", dir)); err != nil {
		t.Errorf("Files() = %v; want nil", err)
	}
	if err := Files(); err != nil {
		t.Errorf("Files() with no requirements = %v; want nil", err)
	}
}

func TestCheckResolvedPaths(t *testing.T) {
	dir := t.TempDir()
	set := options.MustNewSet(
		options.Spec{Name: "input", Kind: options.Path, Check: options.ExistingFile},
		options.Spec{Name: "workdir", Kind: options.Path, Check: options.ExistingDir},
		options.Spec{Name: "output", Kind: options.Path},
	)
	res, err := options.Resolver{Specs: set, Known: []string{"submit"}}.Resolve(nil, options.Input{
		Flags: map[string]string{
			"input":   filepath.Join(dir, "nope.txt"),
			"workdir": dir,
			"output":  filepath.Join(dir, "not-checked"),
		},
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	missing := Missing(Check(res))
	if len(missing) != 1 {
		t.Fatalf("Check() reported %d failures; want 1", len(missing))
	}
	m := missing[0]
	if m.Option != "--input" || m.Kind != options.ExistingFile {
		t.Errorf("failure = %+v; want --input existing file", m)
	}
	if msg := m.Error(); msg != "--input: no such file: "+filepath.Join(dir, "nope.txt") {
		t.Errorf("Error() = %q", msg)
	}
}
