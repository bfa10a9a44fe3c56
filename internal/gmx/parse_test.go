package gmx

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestNstepsFromMDP(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr error
		fileErr bool
	}{
		{"simple", "integrator = md\nnsteps = 500000\n", 500000, nil, false},
		{"comment", "nsteps = 1000 ; 2 ps\n", 1000, nil, false},
		{"last wins", "nsteps = 10\ndt = 0.002\n  nsteps=20\n", 20, nil, false},
		{"infinite", "nsteps = -1\n", -1, nil, false},
		{"similar key ignored", "nstepsx = 5\nnsteps = 7\n", 7, nil, false},
		{"missing", "integrator = md\n", 0, ErrNoNsteps, false},
		{"no equals", "nsteps 10\n", 0, nil, true},
		{"not a number", "nsteps = many\n", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "md.mdp", tt.content)
			got, err := NstepsFromMDP(path)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v; want %v", err, tt.wantErr)
				}
			case tt.fileErr:
				var fe *FileError
				if !errors.As(err, &fe) {
					t.Errorf("error = %v; want *FileError", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("NstepsFromMDP() = %d; want %d", got, tt.want)
				}
			}
		})
	}
}

func TestBoxFromGRO(t *testing.T) {
	dir := t.TempDir()
	gro := "title\n    2\n    1SOL     OW    1   0.126   1.624   1.679\n    1SOL    HW1    2   0.190   1.661   1.747\n   3.00000   4.00000  10.50000\n"
	box, err := BoxFromGRO(writeFile(t, dir, "a.gro", gro))
	if err != nil {
		t.Fatalf("BoxFromGRO() error: %v", err)
	}
	if box != [3]float64{3, 4, 10.5} {
		t.Errorf("box = %v", box)
	}

	triclinic := "title\n    0\n   3.0 3.0 9.0 0.0 0.0 1.0 0.0 1.0 1.0\n\n"
	box, err = BoxFromGRO(writeFile(t, dir, "b.gro", triclinic))
	if err != nil || box[2] != 9 {
		t.Errorf("triclinic box = %v, %v; want z 9", box, err)
	}

	if _, err := BoxFromGRO(writeFile(t, dir, "c.gro", "title\n")); !errors.Is(err, ErrNoBox) {
		t.Errorf("short file error = %v; want ErrNoBox", err)
	}
	if _, err := BoxFromGRO(writeFile(t, dir, "d.gro", "x y z\n")); err == nil {
		t.Error("non-numeric box accepted")
	}
}

func TestNBins(t *testing.T) {
	tests := []struct {
		length, width float64
		want          int
	}{
		{10.5, 0.005, 2100},
		{1, 0.3, 4},
		{0.3, 0.1, 3},
	}
	for _, tt := range tests {
		got, err := NBins(tt.length, tt.width)
		if err != nil || got != tt.want {
			t.Errorf("NBins(%g, %g) = %d, %v; want %d", tt.length, tt.width, got, err, tt.want)
		}
	}
	if _, err := NBins(1, 0); err == nil {
		t.Error("NBins with zero width succeeded")
	}
}

const sampleLog = `Started mdrun
           Step           Time
              0        0.00000

   Energies (kJ/mol)
           Step           Time
           5000       10.00000

           Step           Time
          10000       20.00000

	<======  ###############  ==>
`

func TestLastTimeFromLog(t *testing.T) {
	dir := t.TempDir()
	got, err := LastTimeFromLog(writeFile(t, dir, "md.log", sampleLog))
	if err != nil || got != 20 {
		t.Errorf("plain log: %v, %v; want 20", got, err)
	}

	got, err = LastTimeFromLog(writeGzip(t, dir, "md2.log.gz", sampleLog))
	if err != nil || got != 20 {
		t.Errorf("gzip log: %v, %v; want 20", got, err)
	}

	if _, err := LastTimeFromLog(writeFile(t, dir, "empty.log", "nothing here\n")); !errors.Is(err, ErrNoLastTime) {
		t.Errorf("empty log error = %v; want ErrNoLastTime", err)
	}
}

func TestCompressedFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "md.edr")

	if got, ok := CompressedFile(plain); ok || got != plain {
		t.Errorf("missing file: (%q, %v)", got, ok)
	}
	writeFile(t, dir, "md.edr.bz2", "x")
	if got, ok := CompressedFile(plain); !ok || got != plain+".bz2" {
		t.Errorf("bz2 variant: (%q, %v)", got, ok)
	}
	writeFile(t, dir, "md.edr", "x")
	if got, ok := CompressedFile(plain); !ok || got != plain {
		t.Errorf("plain file preferred: (%q, %v)", got, ok)
	}
}
