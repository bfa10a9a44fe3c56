package gmx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testMdrun() *Mdrun {
	return &Mdrun{
		Names:      Names{System: "sys", Settings: "equil"},
		Structure:  "start.gro",
		Continue:   StartNew,
		Nresubmits: 2,
		Backup:     true,
		Nodes:      "1",
		NtasksNode: 4,
		BashDir:    "/p/bash",
		Lmod:       "/p/lmod/gmx.sh",
		GmxExe:     "gmx",
	}
}

func TestMdrunValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Mdrun)
		errSub string
	}{
		{"ok", func(m *Mdrun) {}, ""},
		{"negative resubmits", func(m *Mdrun) { m.Nresubmits = -1 }, "--nresubmits"},
		{"bad nodes", func(m *Mdrun) { m.Nodes = "a-b" }, "--nodes"},
		{"mpi needed", func(m *Mdrun) { m.Nodes = "1-2" }, "--gmx-mpi-exe"},
		{"mpi given", func(m *Mdrun) { m.Nodes = "2"; m.GmxMpiExe = "gmx_mpi" }, ""},
		{"negative tasks", func(m *Mdrun) { m.NtasksNode = -1 }, "--ntasks-per-node"},
		{"no structure", func(m *Mdrun) { m.Structure = "" }, "--structure"},
		{"continue without structure", func(m *Mdrun) { m.Structure = ""; m.Continue = Continue }, ""},
		{"bad continue", func(m *Mdrun) { m.Continue = 4 }, "--continue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMdrun()
			tt.modify(m)
			err := m.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() = %v; want mention of %s", err, tt.errSub)
			}
		})
	}
}

func TestMdrunInputs(t *testing.T) {
	m := testMdrun()
	var got []string
	for _, r := range m.Inputs() {
		got = append(got, r.Path)
	}
	if diff := cmp.Diff([]string{"equil_sys.mdp", "start.gro", "sys.top"}, got); diff != "" {
		t.Errorf("new run inputs (-want +got):\n%s", diff)
	}

	m.Continue = ContinueResubmit
	got = nil
	for _, r := range m.Inputs() {
		got = append(got, r.Path)
	}
	if diff := cmp.Diff([]string{"equil_sys.mdp", "equil_sys.tpr", "equil_out_sys.cpt"}, got); diff != "" {
		t.Errorf("continuation inputs (-want +got):\n%s", diff)
	}
}

func TestMdrunRequests(t *testing.T) {
	m := testMdrun()
	m.Continue = StartNewResubmit
	m.GromppFlags = "-maxwarn 1"
	reqs := m.Requests("/p/simulation/gmx/gmx_mdrun.sh", []string{"--time", "1"}, 5000)
	if len(reqs) != 3 {
		t.Fatalf("%d requests; want first job plus 2 resubmits", len(reqs))
	}
	want := []string{"/p/bash", "sys", "equil", "start.gro", "2", "5000", "1", "/p/lmod/gmx.sh", "gmx", "0", "-maxwarn 1"}
	if diff := cmp.Diff(want, reqs[0].PosArgs); diff != "" {
		t.Errorf("first job posargs (-want +got):\n%s", diff)
	}
	for _, r := range reqs[1:] {
		if r.PosArgs[4] != "3" {
			t.Errorf("resubmit continue = %q; want 3", r.PosArgs[4])
		}
	}

	m.Continue = Continue
	m.Structure = ""
	m.Backup = false
	reqs = m.Requests("run.sh", nil, 1)
	if len(reqs) != 1 {
		t.Fatalf("%d requests; want 1 without resubmission", len(reqs))
	}
	if reqs[0].PosArgs[3] != "0" || reqs[0].PosArgs[6] != "0" {
		t.Errorf("posargs = %v; want unset structure and no backup as 0", reqs[0].PosArgs)
	}
}

func TestMdrunSbatchArgs(t *testing.T) {
	n := Names{System: "sys", Settings: "equil"}
	own := []string{"--nodes", "1", "--ntasks-per-node", "4"}

	tests := []struct {
		name         string
		user         []string
		nonExclusive bool
		requeue      bool
		want         []string
		errSub       string
	}{
		{
			name: "defaults",
			want: []string{"--nodes", "1", "--ntasks-per-node", "4", "--job-name", "equil_sys", "--output", "equil_out_sys_slurm-%j.out", "--exclusive", "--no-requeue"},
		},
		{
			name:         "user choices kept",
			user:         []string{"-J", "mine", "--output=x.out", "--requeue"},
			nonExclusive: true,
			requeue:      true,
			want:         []string{"--nodes", "1", "--ntasks-per-node", "4", "-J", "mine", "--output=x.out", "--requeue"},
		},
		{name: "exclusive conflict", user: []string{"--exclusive"}, nonExclusive: true, errSub: "--non-exclusive"},
		{name: "no-requeue conflict", user: []string{"--no-requeue"}, requeue: true, errSub: "--no-requeue"},
		{name: "requeue conflict", user: []string{"--requeue"}, errSub: "--requeue"},
		{name: "signal", user: []string{"--signal=B:USR1@60"}, errSub: "--signal"},
		{name: "duplicate", user: []string{"--nodes=2"}, errSub: "already set"},
		{name: "duplicate short", user: []string{"-N", "2"}, errSub: "already set"},
		{name: "duplicate attached short", user: []string{"-N2"}, errSub: "already set"},
		{
			name:         "attached job name",
			user:         []string{"-Jmine", "-ofile.out"},
			nonExclusive: true,
			want:         []string{"--nodes", "1", "--ntasks-per-node", "4", "--no-requeue", "-Jmine", "-ofile.out"},
		},
		{
			name:         "short options not set here",
			user:         []string{"-p", "gpu", "-t", "1:00:00"},
			nonExclusive: true,
			want:         []string{"--nodes", "1", "--ntasks-per-node", "4", "--job-name", "equil_sys", "--output", "equil_out_sys_slurm-%j.out", "--no-requeue", "-p", "gpu", "-t", "1:00:00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MdrunSbatchArgs(own, tt.user, n, tt.nonExclusive, tt.requeue)
			if tt.errSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSub) {
					t.Errorf("error = %v; want mention of %s", err, tt.errSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrayIndexFiles(t *testing.T) {
	m := testMdrun()
	dir := t.TempDir()
	if m.StrayIndexFiles(dir) {
		t.Error("empty directory reported")
	}
	writeFile(t, dir, "other.ndx", "")
	if !m.StrayIndexFiles(dir) {
		t.Error("other.ndx without sys.ndx not reported")
	}
	writeFile(t, dir, "sys.ndx", "")
	if m.StrayIndexFiles(dir) {
		t.Error("reported although sys.ndx exists")
	}
}
