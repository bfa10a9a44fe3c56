package ini

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindConfigOrder(t *testing.T) {
	base := t.TempDir()
	cwd := filepath.Join(base, "work")
	home := filepath.Join(base, "home")
	root := filepath.Join(base, "project")
	for _, d := range []string{cwd, home, root} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := FindConfig(cwd, home, root, ""); ok {
		t.Fatal("FindConfig found a file in empty directories")
	}

	projectFile := filepath.Join(root, DefaultName)
	writeFile(t, projectFile, "[submit]\n")
	if got, _ := FindConfig(cwd, home, root, ""); got != projectFile {
		t.Errorf("FindConfig = %q; want project file %q", got, projectFile)
	}

	userFile := filepath.Join(home, UserDir, DefaultName)
	writeFile(t, userFile, "[submit]\n")
	if got, _ := FindConfig(cwd, home, root, ""); got != userFile {
		t.Errorf("FindConfig = %q; want user file %q", got, userFile)
	}

	cwdFile := filepath.Join(cwd, DefaultName)
	writeFile(t, cwdFile, "[submit]\n")
	if got, _ := FindConfig(cwd, home, root, ""); got != cwdFile {
		t.Errorf("FindConfig = %q; want cwd file %q", got, cwdFile)
	}
}

func TestFindConfigIgnoresDirectories(t *testing.T) {
	cwd := t.TempDir()
	if err := os.Mkdir(filepath.Join(cwd, DefaultName), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok := FindConfig(cwd, "", "", ""); ok {
		t.Error("a directory named like the config file must not match")
	}
}

func TestFindConfigAbsoluteName(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.ini")
	writeFile(t, custom, "[submit]\n")
	got, ok := FindConfig("/nonexistent", "", "", custom)
	if !ok || got != custom {
		t.Errorf("FindConfig(abs) = (%q, %v); want (%q, true)", got, ok, custom)
	}
}

func TestLoadWithoutFileIsEmpty(t *testing.T) {
	doc, err := Load(t.TempDir(), t.TempDir(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !doc.Empty() || doc.Path != "" {
		t.Errorf("Load() = %+v; want empty document", doc)
	}
}

func TestLoadStopsAtFirstMatch(t *testing.T) {
	cwd := t.TempDir()
	root := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultName), "[submit]\ntime = 1\n")
	// Broken file further down the search path must never be read.
	writeFile(t, filepath.Join(root, DefaultName), "[broken\n")

	doc, err := Load(cwd, "", root, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if v, _ := doc.Lookup("submit", "time"); v != "1" {
		t.Errorf("time = %q; want 1", v)
	}
}
