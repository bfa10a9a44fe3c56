package gmx

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
)

// layout selects which groups of positional arguments a script takes.
type layout int

const (
	layoutGeneral  layout = iota // general
	layoutTrj                    // general, begin, end, every
	layoutEnergy                 // general, begin, end
	layoutMSD                    // general, begin, end, beginfit, endfit, restart
	layoutZProfile               // general, trj, nbins
	layoutRDF                    // general, trj, binwidth
	layoutSlab                   // general, trj, binwidth, zmin, zmax
)

// Script is one analysis batch script.
type Script struct {
	Name   string
	Inputs []Input
	layout layout
}

// Slab reports whether the script analyzes a slab in the xy plane.
func (s Script) Slab() bool { return s.layout == layoutSlab }

// NeedsElectrodes reports whether the script only makes sense for systems
// with graphene electrodes.
func (s Script) NeedsElectrodes() bool {
	return s.Name == "msd_electrodes" || s.Name == "densmap-z_gra"
}

var (
	ndxWrapped   = []Input{InputNDX, InputXTCWrapped}
	ndxTRR       = []Input{InputNDX, InputTRR}
	ndxUnwrapped = []Input{InputNDX, InputXTCUnwrapped}
	wrapped      = []Input{InputXTCWrapped}
)

// catalog lists the analysis scripts in submission order.
var catalog = []Script{
	{"density-z_charge", ndxWrapped, layoutZProfile},
	{"density-z_mass", ndxWrapped, layoutZProfile},
	{"density-z_number", ndxWrapped, layoutZProfile},
	{"densmap-z_gra", ndxTRR, layoutSlab},
	{"densmap-z_Li", []Input{InputTRR}, layoutSlab},
	{"densmap-z_NBT", ndxTRR, layoutSlab},
	{"densmap-z_OBT", ndxTRR, layoutSlab},
	{"densmap-z_OE", ndxTRR, layoutSlab},
	{"energy", []Input{InputEDR}, layoutEnergy},
	{"make_ndx", nil, layoutGeneral},
	{"msd", ndxUnwrapped, layoutMSD},
	{"msd_electrodes", ndxUnwrapped, layoutMSD},
	{"msd_lateral-z", ndxUnwrapped, layoutMSD},
	{"msd_parallel-z", ndxUnwrapped, layoutMSD},
	{"msd_tensor", ndxUnwrapped, layoutMSD},
	{"polystat", ndxWrapped, layoutTrj},
	{"potential-z", ndxWrapped, layoutZProfile},
	{"rdf_ether-com", wrapped, layoutRDF},
	{"rdf_Li", wrapped, layoutRDF},
	{"rdf_Li-com", wrapped, layoutRDF},
	{"rdf_NBT", wrapped, layoutRDF},
	{"rdf_NTf2-com", wrapped, layoutRDF},
	{"rdf_OE", wrapped, layoutRDF},
	{"rdf_slab-z_Li", wrapped, layoutSlab},
	{"rdf_slab-z_NBT", wrapped, layoutSlab},
	{"rdf_slab-z_OE", wrapped, layoutSlab},
	{"trjconv_nojump", wrapped, layoutTrj},
	{"trjconv_whole", []Input{InputTRR}, layoutTrj},
}

// Scripts returns the analysis scripts in submission order.
func Scripts() []Script { return slices.Clone(catalog) }

// LookupScript finds a script by name.
func LookupScript(name string) (Script, bool) {
	i := slices.IndexFunc(catalog, func(s Script) bool { return s.Name == name })
	if i < 0 {
		return Script{}, false
	}
	return catalog[i], true
}

// Script groups selectable by number.
const (
	GroupAll      = "0"
	GroupBulk     = "1"
	GroupSlab     = "2"
	GroupTrjconv  = "3"
	GroupRDF      = "4"
	GroupBulkRDF  = "4.1"
	GroupSlabRDF  = "4.2"
	GroupMSD      = "5"
	GroupZProfile = "6"
	GroupDensmap  = "7"
)

// Groups maps every group number to a short description.
var Groups = map[string]string{
	GroupAll:      "all scripts",
	GroupBulk:     "all bulk scripts",
	GroupSlab:     "all scripts analyzing a slab in the xy plane",
	GroupTrjconv:  "all trjconv scripts",
	GroupRDF:      "all RDFs (bulk and slab-z)",
	GroupBulkRDF:  "all bulk RDFs",
	GroupSlabRDF:  "all slab-z RDFs",
	GroupMSD:      "all MSDs",
	GroupZProfile: "all z-profiles (density-z and potential-z)",
	GroupDensmap:  "all z-densmaps",
}

// groupOrder is the order in which groups are expanded.
var groupOrder = []string{GroupSlab, GroupTrjconv, GroupRDF, GroupBulkRDF, GroupSlabRDF, GroupMSD, GroupZProfile, GroupDensmap}

// groupMembers selects the catalog entries of the simple groups.
var groupMembers = map[string]func(Script) bool{
	GroupSlab:     func(s Script) bool { return s.Slab() },
	GroupRDF:      func(s Script) bool { return strings.Contains(s.Name, "rdf") },
	GroupBulkRDF:  func(s Script) bool { return strings.Contains(s.Name, "rdf") && !strings.Contains(s.Name, "slab-z") },
	GroupSlabRDF:  func(s Script) bool { return strings.Contains(s.Name, "rdf_slab-z") },
	GroupMSD:      func(s Script) bool { return strings.Contains(s.Name, "msd") },
	GroupZProfile: func(s Script) bool { return strings.Contains(s.Name, "density-z") || strings.Contains(s.Name, "potential-z") },
	GroupDensmap:  func(s Script) bool { return strings.Contains(s.Name, "densmap-z") },
}

// ParseSelection splits a whitespace separated list of script names and
// group numbers and rejects unknown entries.
func ParseSelection(s string) ([]string, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no analysis script selected")
	}
	var unknown []string
	for _, tok := range tokens {
		if _, ok := Groups[tok]; ok {
			continue
		}
		if _, ok := LookupScript(tok); !ok {
			unknown = append(unknown, tok)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown analysis script or group: %s", strings.Join(unknown, ", "))
	}
	return tokens, nil
}

type selection []string

func (sel selection) has(tok string) bool { return slices.Contains(sel, tok) }

func (sel selection) any(match func(string) bool) bool { return slices.ContainsFunc(sel, match) }

// usesZProfiles reports whether a selected script needs the number of bins.
func (sel selection) usesZProfiles() bool {
	return sel.has(GroupAll) || sel.has(GroupBulk) || sel.has(GroupZProfile) ||
		sel.any(func(t string) bool { return strings.Contains(t, "density-z") || strings.Contains(t, "potential-z") })
}

// usesSlabs reports whether a selected script analyzes a slab.
func (sel selection) usesSlabs() bool {
	return sel.has(GroupAll) || sel.has(GroupSlab) || sel.has(GroupSlabRDF) || sel.has(GroupDensmap) ||
		sel.any(func(t string) bool { return strings.Contains(t, "slab-z") || strings.Contains(t, "densmap-z") })
}

// Analysis holds the parameters shared by all analysis jobs of a
// simulation.
type Analysis struct {
	Names   Names
	BashDir string
	Lmod    string
	GmxExe  string

	Begin, End, Every         float64
	EndSet                    bool
	BeginFit, EndFit, Restart float64
	BinWidth                  float64

	ZMin, ZMax float64
	ZMaxSet    bool
	SlabWidth  float64
	Discretize bool
	CenterSlab bool
	NBins      int
	slabEdges  []float64
}

// Complete fills in what was not given on the command line: the end time
// from the .log file, the z range from the .gro file and the number of
// bins. It then validates the slab settings against the selection.
func (a *Analysis) Complete(tokens []string) error {
	sel := selection(tokens)
	if !a.EndSet {
		log, ok := CompressedFile(a.Names.Log())
		if !ok {
			return fmt.Errorf("could not get the time of the last frame: no such file: %s; either make sure that the .log file exists or set --end", a.Names.Log())
		}
		end, err := LastTimeFromLog(log)
		if err != nil {
			return fmt.Errorf("could not get the time of the last frame: %w", err)
		}
		a.End, a.EndSet = end, true
	}
	if a.SlabWidth <= 0 {
		return fmt.Errorf("--slabwidth (%g) must be greater than zero", a.SlabWidth)
	}
	if a.Discretize && a.CenterSlab {
		return fmt.Errorf("--discretize and --center-slab are mutually exclusive")
	}
	switch {
	case a.CenterSlab:
		box, err := a.box("")
		if err != nil {
			return err
		}
		a.ZMin = 0.5 * (box[2] - a.SlabWidth)
		a.ZMax = 0.5 * (box[2] + a.SlabWidth)
		a.ZMaxSet = true
	case !a.ZMaxSet:
		box, err := a.box("either provide the .gro file or set --zmax")
		if err != nil {
			return err
		}
		a.ZMax, a.ZMaxSet = box[2], true
	}
	if a.ZMax <= a.ZMin {
		return fmt.Errorf("zmax (%g) must be greater than zmin (%g)", a.ZMax, a.ZMin)
	}
	if a.Discretize {
		if a.ZMax-a.ZMin < a.SlabWidth {
			return fmt.Errorf("with --discretize, zmax-zmin (%g-%g) must not be less than --slabwidth (%g)", a.ZMax, a.ZMin, a.SlabWidth)
		}
		if !sel.usesSlabs() {
			return fmt.Errorf("--discretize can only be used with scripts that analyze a slab in the xy plane")
		}
		a.slabEdges = SlabEdges(a.ZMin, a.ZMax, a.SlabWidth)
	}
	if sel.usesZProfiles() {
		box, err := a.box("")
		if err != nil {
			return err
		}
		if a.NBins, err = NBins(box[2], a.BinWidth); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) box(hint string) ([3]float64, error) {
	gro := a.Names.GRO()
	box, err := BoxFromGRO(gro)
	if err != nil {
		if hint != "" {
			return box, fmt.Errorf("could not get the box dimensions: %w; %s", err, hint)
		}
		return box, fmt.Errorf("could not get the box dimensions: %w", err)
	}
	return box, nil
}

// SlabEdges splits [zmin, zmax) into slabs of the given width. The last
// edge may lie beyond zmax.
func SlabEdges(zmin, zmax, width float64) []float64 {
	edges := []float64{zmin}
	for edge := zmin; edge < zmax; {
		edge += width
		edges = append(edges, edge)
	}
	return edges
}

// Inputs lists the simulation files the selected scripts read. The run
// input file is always required and the energy file may be compressed.
func (a *Analysis) Inputs(tokens []string) []precheck.Requirement {
	reqs := []precheck.Requirement{precheck.File("run input", a.Names.TPR())}
	seen := map[Input]bool{}
	add := func(inputs ...Input) {
		for _, in := range inputs {
			if seen[in] {
				continue
			}
			seen[in] = true
			path := a.Names.Path(in)
			if in == InputEDR {
				path, _ = CompressedFile(path)
			}
			reqs = append(reqs, precheck.File(in.String(), path))
		}
	}
	for _, tok := range tokens {
		if s, ok := LookupScript(tok); ok {
			add(s.Inputs...)
			continue
		}
		switch tok {
		case GroupAll, GroupBulk:
			add(InputEDR, InputTRR)
		case GroupSlab:
			add(InputNDX, InputTRR, InputXTCWrapped)
		case GroupTrjconv:
			add(InputTRR)
		case GroupRDF, GroupBulkRDF, GroupSlabRDF:
			add(InputXTCWrapped)
		case GroupMSD:
			add(InputNDX, InputXTCUnwrapped)
		case GroupZProfile:
			add(InputNDX, InputXTCWrapped)
		case GroupDensmap:
			add(InputNDX, InputTRR)
		}
	}
	return reqs
}

// PosArgs returns the positional arguments of script s. slab overrides the
// z range of slab scripts when non-nil.
func (a *Analysis) PosArgs(s Script, slab []float64) []string {
	zmin, zmax := a.ZMin, a.ZMax
	if slab != nil {
		zmin, zmax = slab[0], slab[1]
	}
	args := []string{a.BashDir, a.Lmod, a.GmxExe, a.Names.System, a.Names.Settings}
	switch s.layout {
	case layoutGeneral:
	case layoutEnergy:
		args = append(args, options.PosArgs(a.Begin, a.End)...)
	case layoutMSD:
		args = append(args, options.PosArgs(a.Begin, a.End, a.BeginFit, a.EndFit, a.Restart)...)
	case layoutTrj:
		args = append(args, options.PosArgs(a.Begin, a.End, a.Every)...)
	case layoutZProfile:
		args = append(args, options.PosArgs(a.Begin, a.End, a.Every, a.NBins)...)
	case layoutRDF:
		args = append(args, options.PosArgs(a.Begin, a.End, a.Every, a.BinWidth)...)
	case layoutSlab:
		args = append(args, options.PosArgs(a.Begin, a.End, a.Every, a.BinWidth, zmin, zmax)...)
	}
	return args
}

// AnalysisJob is one planned analysis submission.
type AnalysisJob struct {
	Script  string
	Slab    string // "_<zmin>-<zmax>nm" for discretized slab jobs
	PosArgs []string
	After   []int // indexes of jobs this one waits for
}

// Label names the job in messages and in the default job name.
func (j AnalysisJob) Label() string { return j.Script + j.Slab }

// AnalysisPlan is the ordered list of jobs for a selection.
type AnalysisPlan struct {
	Jobs    []AnalysisJob
	Skipped []string // scripts left out because the system has no electrodes
}

// Plan expands the selection into jobs. Single scripts come first in
// catalog order, then the groups. Groups 0 and 1 chain make_ndx,
// trjconv_whole and trjconv_nojump and let every other script wait for the
// step producing its input.
func (a *Analysis) Plan(tokens []string) *AnalysisPlan {
	sel := selection(tokens)
	p := &AnalysisPlan{}

	for _, s := range catalog {
		if sel.has(s.Name) {
			a.add(p, s, nil)
		}
	}

	if sel.has(GroupAll) || sel.has(GroupBulk) {
		makeNdx := a.addPrep(p, "make_ndx", nil)
		whole := a.addPrep(p, "trjconv_whole", []int{makeNdx})
		nojump := a.addPrep(p, "trjconv_nojump", []int{whole})
		for _, s := range catalog {
			if !sel.has(GroupAll) && s.Slab() {
				continue
			}
			switch s.Name {
			case "make_ndx", "trjconv_whole", "trjconv_nojump":
				continue
			}
			var after []int
			switch {
			case slices.Contains(s.Inputs, InputXTCUnwrapped):
				after = []int{nojump}
			case slices.Contains(s.Inputs, InputXTCWrapped):
				after = []int{whole}
			case slices.Contains(s.Inputs, InputNDX):
				after = []int{makeNdx}
			}
			a.add(p, s, after)
		}
	}

	for _, g := range groupOrder {
		if !sel.has(g) {
			continue
		}
		if g == GroupTrjconv {
			whole := a.addPrep(p, "trjconv_whole", nil)
			a.addPrep(p, "trjconv_nojump", []int{whole})
			continue
		}
		for _, s := range catalog {
			if groupMembers[g](s) {
				a.add(p, s, nil)
			}
		}
	}
	return p
}

// addPrep appends a preparation step unconditionally and returns its index.
func (a *Analysis) addPrep(p *AnalysisPlan, name string, after []int) int {
	s, _ := LookupScript(name)
	p.Jobs = append(p.Jobs, AnalysisJob{Script: name, PosArgs: a.PosArgs(s, nil), After: after})
	return len(p.Jobs) - 1
}

// add appends s, skipping electrode scripts for systems without graphene
// and splitting slab scripts into one job per slab when discretizing.
func (a *Analysis) add(p *AnalysisPlan, s Script, after []int) {
	if s.NeedsElectrodes() && !strings.Contains(a.Names.System, "gra") {
		p.Skipped = append(p.Skipped, s.Name)
		return
	}
	if !a.Discretize || !s.Slab() {
		p.Jobs = append(p.Jobs, AnalysisJob{Script: s.Name, PosArgs: a.PosArgs(s, nil), After: after})
		return
	}
	for i := 0; i+1 < len(a.slabEdges); i++ {
		slab := []float64{a.slabEdges[i], a.slabEdges[i+1]}
		p.Jobs = append(p.Jobs, AnalysisJob{
			Script:  s.Name,
			Slab:    fmt.Sprintf("_%.*f-%.*fnm", options.Precision, slab[0], options.Precision, slab[1]),
			PosArgs: a.PosArgs(s, slab),
			After:   after,
		})
	}
}

// Jobs turns the plan into scheduler jobs. Scripts live in scriptDir as
// <name>.sh. Unless the user set them, every job gets the job name
// "<settings>_<system>_<label>" and a matching output file.
func (a *Analysis) Jobs(p *AnalysisPlan, scriptDir string, user []string) []scheduler.Job {
	setName := options.HasOption(user, "--job-name", "-J")
	setOutput := options.HasOption(user, "--output", "-o")
	jobs := make([]scheduler.Job, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		name := a.Names.InPattern() + "_" + j.Label()
		args := slices.Clone(user)
		if !setName {
			args = append(args, "--job-name", name)
		}
		if !setOutput {
			args = append(args, "--output", name+outputSuffix)
		}
		jobs = append(jobs, scheduler.Job{
			Request: scheduler.Request{
				Name:    j.Label(),
				Args:    args,
				Script:  filepath.Join(scriptDir, j.Script+".sh"),
				PosArgs: j.PosArgs,
			},
			After: j.After,
		})
	}
	return jobs
}
