package gmx

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testAnalysis(dir, system string) *Analysis {
	return &Analysis{
		Names:     Names{System: system, Settings: "pr", Dir: dir},
		BashDir:   "/p/bash",
		Lmod:      "/p/lmod/gmx.sh",
		GmxExe:    "gmx",
		End:       100,
		EndSet:    true,
		Every:     1,
		BeginFit:  -1,
		EndFit:    -1,
		Restart:   1000,
		BinWidth:  0.005,
		ZMax:      10,
		ZMaxSet:   true,
		SlabWidth: 0.1,
	}
}

func labels(p *AnalysisPlan) []string {
	var out []string
	for _, j := range p.Jobs {
		out = append(out, j.Label())
	}
	return out
}

func TestParseSelection(t *testing.T) {
	got, err := ParseSelection(" energy  4.1 msd ")
	if err != nil {
		t.Fatalf("ParseSelection() error: %v", err)
	}
	if diff := cmp.Diff([]string{"energy", "4.1", "msd"}, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseSelection("energy rdf_XY 9"); err == nil || !strings.Contains(err.Error(), "rdf_XY, 9") {
		t.Errorf("unknown entries error = %v", err)
	}
	if _, err := ParseSelection("  "); err == nil {
		t.Error("empty selection accepted")
	}
}

func TestPlanSingleScripts(t *testing.T) {
	a := testAnalysis("", "sys")
	p := a.Plan([]string{"msd", "energy"})
	if diff := cmp.Diff([]string{"energy", "msd"}, labels(p)); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}
	want := []string{"/p/bash", "/p/lmod/gmx.sh", "gmx", "sys", "pr", "0.000", "100.000"}
	if diff := cmp.Diff(want, p.Jobs[0].PosArgs); diff != "" {
		t.Errorf("energy posargs (-want +got):\n%s", diff)
	}
	if got := p.Jobs[1].PosArgs[5:]; !cmp.Equal(got, []string{"0.000", "100.000", "-1.000", "-1.000", "1000.000"}) {
		t.Errorf("msd posargs = %v", got)
	}
}

func TestPlanBulkGroup(t *testing.T) {
	a := testAnalysis("", "sys")
	a.NBins = 2000
	p := a.Plan([]string{GroupBulk})

	if diff := cmp.Diff([]string{"msd_electrodes"}, p.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if len(p.Jobs) != 19 {
		t.Errorf("%d jobs; want 19: %v", len(p.Jobs), labels(p))
	}
	byName := map[string]AnalysisJob{}
	for _, j := range p.Jobs {
		if strings.Contains(j.Script, "densmap-z") || strings.Contains(j.Script, "slab-z") {
			t.Errorf("bulk group planned slab script %s", j.Script)
		}
		byName[j.Script] = j
	}
	if diff := cmp.Diff([]string{"make_ndx", "trjconv_whole", "trjconv_nojump"}, labels(p)[:3]); diff != "" {
		t.Errorf("preparation chain mismatch (-want +got):\n%s", diff)
	}
	deps := map[string][]int{
		"make_ndx":       nil,
		"trjconv_whole":  {0},
		"trjconv_nojump": {1},
		"energy":         nil,
		"msd":            {2},
		"polystat":       {1},
		"rdf_Li":         {1},
	}
	for name, want := range deps {
		if diff := cmp.Diff(want, byName[name].After); diff != "" {
			t.Errorf("%s dependencies (-want +got):\n%s", name, diff)
		}
	}
	if got := byName["density-z_mass"].PosArgs; got[len(got)-1] != "2000" {
		t.Errorf("density-z posargs = %v; want nbins last", got)
	}
}

func TestPlanAllIncludesSlabsAndElectrodes(t *testing.T) {
	a := testAnalysis("", "sys_gra")
	p := a.Plan([]string{GroupAll})
	if len(p.Skipped) != 0 {
		t.Errorf("skipped = %v for a graphene system", p.Skipped)
	}
	if len(p.Jobs) != 28 {
		t.Errorf("%d jobs; want the whole catalog", len(p.Jobs))
	}
}

func TestPlanGroups(t *testing.T) {
	a := testAnalysis("", "sys")
	tests := []struct {
		group string
		want  []string
	}{
		{GroupTrjconv, []string{"trjconv_whole", "trjconv_nojump"}},
		{GroupSlabRDF, []string{"rdf_slab-z_Li", "rdf_slab-z_NBT", "rdf_slab-z_OE"}},
		{GroupBulkRDF, []string{"rdf_ether-com", "rdf_Li", "rdf_Li-com", "rdf_NBT", "rdf_NTf2-com", "rdf_OE"}},
		{GroupMSD, []string{"msd", "msd_lateral-z", "msd_parallel-z", "msd_tensor"}},
		{GroupZProfile, []string{"density-z_charge", "density-z_mass", "density-z_number", "potential-z"}},
		{GroupDensmap, []string{"densmap-z_Li", "densmap-z_NBT", "densmap-z_OBT", "densmap-z_OE"}},
	}
	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			p := a.Plan([]string{tt.group})
			if diff := cmp.Diff(tt.want, labels(p)); diff != "" {
				t.Errorf("jobs mismatch (-want +got):\n%s", diff)
			}
		})
	}
	p := a.Plan([]string{GroupTrjconv})
	if diff := cmp.Diff([]int{0}, p.Jobs[1].After); diff != "" {
		t.Errorf("nojump waits for (-want +got):\n%s", diff)
	}
}

func TestPlanDiscretize(t *testing.T) {
	a := testAnalysis("", "sys")
	a.Discretize = true
	a.ZMin, a.ZMax = 0, 0.3
	a.slabEdges = SlabEdges(a.ZMin, a.ZMax, a.SlabWidth)

	p := a.Plan([]string{"rdf_slab-z_Li", "energy"})
	want := []string{"energy", "rdf_slab-z_Li_0.000-0.100nm", "rdf_slab-z_Li_0.100-0.200nm", "rdf_slab-z_Li_0.200-0.300nm"}
	if diff := cmp.Diff(want, labels(p)); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}
	last := p.Jobs[3].PosArgs
	if diff := cmp.Diff([]string{"0.005", "0.200", "0.300"}, last[len(last)-3:]); diff != "" {
		t.Errorf("slab posargs (-want +got):\n%s", diff)
	}
}

func TestAnalysisComplete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pr_out_sys.gro", "t\n    0\n   3.0 3.0 10.0\n")
	writeGzip(t, dir, "pr_out_sys.log.gz", sampleLog)

	a := testAnalysis(dir, "sys")
	a.EndSet, a.ZMaxSet = false, false
	if err := a.Complete([]string{GroupZProfile}); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if a.End != 20 || a.ZMax != 10 || a.NBins != 2000 {
		t.Errorf("End = %g, ZMax = %g, NBins = %d; want 20, 10, 2000", a.End, a.ZMax, a.NBins)
	}

	c := testAnalysis(dir, "sys")
	c.CenterSlab = true
	c.SlabWidth = 1
	if err := c.Complete([]string{"rdf_slab-z_Li"}); err != nil {
		t.Fatalf("Complete(center) error: %v", err)
	}
	if c.ZMin != 4.5 || c.ZMax != 5.5 {
		t.Errorf("centered slab = [%g, %g]; want [4.5, 5.5]", c.ZMin, c.ZMax)
	}
}

func TestAnalysisCompleteErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		modify func(a *Analysis)
		tokens []string
		errSub string
	}{
		{"missing log", func(a *Analysis) { a.EndSet = false }, []string{"energy"}, "--end"},
		{"missing gro", func(a *Analysis) { a.ZMaxSet = false }, []string{"energy"}, "--zmax"},
		{"slabwidth", func(a *Analysis) { a.SlabWidth = 0 }, []string{"energy"}, "--slabwidth"},
		{"exclusive", func(a *Analysis) { a.Discretize = true; a.CenterSlab = true }, []string{"7"}, "mutually exclusive"},
		{"zmax below zmin", func(a *Analysis) { a.ZMin = 11 }, []string{"energy"}, "greater than zmin"},
		{"slab too thin", func(a *Analysis) { a.Discretize = true; a.ZMax = 0.05 }, []string{"7"}, "--slabwidth"},
		{"no slab script", func(a *Analysis) { a.Discretize = true }, []string{"energy"}, "slab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAnalysis(dir, "sys")
			tt.modify(a)
			err := a.Complete(tt.tokens)
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Complete() = %v; want mention of %s", err, tt.errSub)
			}
		})
	}
}

func TestAnalysisInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pr_out_sys.edr.gz", "")
	a := testAnalysis(dir, "sys")

	var got []string
	for _, r := range a.Inputs([]string{GroupMSD, "energy", "msd"}) {
		got = append(got, filepath.Base(r.Path))
	}
	want := []string{"pr_sys.tpr", "sys.ndx", "pr_out_sys_pbc_whole_mol_nojump.xtc", "pr_out_sys.edr.gz"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalysisJobs(t *testing.T) {
	a := testAnalysis("", "sys")
	p := a.Plan([]string{GroupTrjconv})

	jobs := a.Jobs(p, "/p/analysis/lintf2_ether/gmx", []string{"--time", "1:00:00"})
	want := []string{"--time", "1:00:00", "--job-name", "pr_sys_trjconv_whole", "--output", "pr_sys_trjconv_whole_slurm-%j.out"}
	if diff := cmp.Diff(want, jobs[0].Request.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if jobs[1].Request.Script != "/p/analysis/lintf2_ether/gmx/trjconv_nojump.sh" {
		t.Errorf("script = %q", jobs[1].Request.Script)
	}
	if diff := cmp.Diff([]int{0}, jobs[1].After); diff != "" {
		t.Errorf("After mismatch (-want +got):\n%s", diff)
	}

	jobs = a.Jobs(p, "/s", []string{"-J", "x", "-o", "y"})
	if diff := cmp.Diff([]string{"-J", "x", "-o", "y"}, jobs[0].Request.Args); diff != "" {
		t.Errorf("user names overridden (-want +got):\n%s", diff)
	}
}
