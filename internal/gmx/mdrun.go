package gmx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// Continuation modes understood by gmx_mdrun.sh.
const (
	StartNew         = 0 // new run, single job
	Continue         = 1 // continue from checkpoint, single job
	StartNewResubmit = 2 // new run, then resubmit continuations
	ContinueResubmit = 3 // continue, then resubmit continuations
)

const (
	unsetPosArg   = "0"
	outputSuffix  = "_slurm-%j.out"
	signalFlag    = "--signal"
	exclusiveFlag = "--exclusive"
	requeueFlag   = "--requeue"
	noRequeueFlag = "--no-requeue"
)

// Mdrun holds everything needed to submit a Gromacs mdrun job chain.
type Mdrun struct {
	Names       Names
	Structure   string
	Continue    int
	Nresubmits  int
	Backup      bool
	Nodes       string
	NtasksNode  int
	BashDir     string
	Lmod        string
	GmxExe      string
	GmxMpiExe   string
	GromppFlags string
}

// NewRun reports whether the first job starts a fresh simulation.
func (m *Mdrun) NewRun() bool {
	return m.Continue == StartNew || m.Continue == StartNewResubmit
}

// Resubmits reports whether continuation jobs are chained after the first.
func (m *Mdrun) Resubmits() bool {
	return m.Continue == StartNewResubmit || m.Continue == ContinueResubmit
}

// Validate checks the numeric options before any file is touched.
func (m *Mdrun) Validate() error {
	if m.Continue < StartNew || m.Continue > ContinueResubmit {
		return fmt.Errorf("invalid --continue (%d)", m.Continue)
	}
	if m.Nresubmits < 0 {
		return fmt.Errorf("--nresubmits (%d) must not be negative", m.Nresubmits)
	}
	minNodes, maxNodes, err := utils.ParseNodeRange(m.Nodes)
	if err != nil {
		return fmt.Errorf("--nodes: %w", err)
	}
	if minNodes < 0 || maxNodes < 0 {
		return fmt.Errorf("--nodes (%s) must not be negative", m.Nodes)
	}
	if maxNodes > 1 && m.GmxMpiExe == "" {
		return fmt.Errorf("--gmx-mpi-exe must be provided if the (maximum) number of nodes (%s) is greater than one", m.Nodes)
	}
	if m.NtasksNode < 0 {
		return fmt.Errorf("--ntasks-per-node (%d) must not be negative", m.NtasksNode)
	}
	if m.NewRun() && m.Structure == "" {
		return fmt.Errorf("you must provide a structure file with --structure if you start a new simulation")
	}
	return nil
}

// Inputs lists the files the first job reads: .mdp, structure and .top for
// a new run, or .mdp, .tpr and checkpoint when continuing.
func (m *Mdrun) Inputs() []precheck.Requirement {
	if m.NewRun() {
		return []precheck.Requirement{
			precheck.File("parameter file", m.Names.MDP()),
			precheck.File("--structure", m.Structure),
			precheck.File("topology", m.Names.Top()),
		}
	}
	return []precheck.Requirement{
		precheck.File("parameter file", m.Names.MDP()),
		precheck.File("run input", m.Names.TPR()),
		precheck.File("checkpoint", m.Names.CPT()),
	}
}

// StrayIndexFiles reports whether dir holds .ndx files but none named
// after the system. grompp only reads <system>.ndx.
func (m *Mdrun) StrayIndexFiles(dir string) bool {
	ndx := utils.FilesWithExt(dir, ".ndx")
	return len(ndx) > 0 && !slices.Contains(ndx, m.Names.System+".ndx")
}

// PosArgs returns the positional arguments of gmx_mdrun.sh for the given
// continuation mode.
func (m *Mdrun) PosArgs(cont, nsteps int) []string {
	structure := m.Structure
	if structure == "" {
		structure = unsetPosArg
	}
	mpi := m.GmxMpiExe
	if mpi == "" {
		mpi = unsetPosArg
	}
	return []string{
		m.BashDir,
		m.Names.System,
		m.Names.Settings,
		structure,
		strconv.Itoa(cont),
		strconv.Itoa(nsteps),
		options.PosArgs(m.Backup)[0],
		m.Lmod,
		m.GmxExe,
		mpi,
		m.GromppFlags,
	}
}

// Requests builds the first job and, for the resubmitting modes,
// Nresubmits continuation jobs. Submit them with scheduler.Chain so every
// job waits for its predecessor.
func (m *Mdrun) Requests(script string, args []string, nsteps int) []scheduler.Request {
	reqs := []scheduler.Request{{
		Name:    m.Names.InPattern(),
		Args:    args,
		Script:  script,
		PosArgs: m.PosArgs(m.Continue, nsteps),
	}}
	if !m.Resubmits() {
		return reqs
	}
	for i := 1; i <= m.Nresubmits; i++ {
		reqs = append(reqs, scheduler.Request{
			Name:    fmt.Sprintf("%s (resubmit %d)", m.Names.InPattern(), i),
			Args:    args,
			Script:  script,
			PosArgs: m.PosArgs(ContinueResubmit, nsteps),
		})
	}
	return reqs
}

// MdrunSbatchArgs combines the options the command sets itself (own) with
// the options the user added through --sbatch, sbatch.* sections or
// unknown flags (user). A job name, an output file, --exclusive and
// --requeue/--no-requeue are added unless the user chose them. Conflicts
// and options already present in own are errors.
func MdrunSbatchArgs(own, user []string, n Names, nonExclusive, requeue bool) ([]string, error) {
	if options.HasOption(user, signalFlag) {
		return nil, fmt.Errorf("'%s' is not allowed in the sbatch options, because it is used internally to allow for cleanup steps", signalFlag)
	}

	vec := slices.Clone(own)
	if !hasSbatchOption(user, "--job-name") {
		vec = append(vec, "--job-name", n.InPattern())
	}
	if !hasSbatchOption(user, "--output") {
		vec = append(vec, "--output", n.OutPattern()+outputSuffix)
	}

	hasExclusive := options.HasOption(user, exclusiveFlag)
	switch {
	case nonExclusive && hasExclusive:
		return nil, fmt.Errorf("conflicting options: --non-exclusive is set but '%s' was given to sbatch", exclusiveFlag)
	case !nonExclusive && !hasExclusive:
		vec = append(vec, exclusiveFlag)
	}

	hasRequeue := options.HasOption(user, requeueFlag)
	hasNoRequeue := options.HasOption(user, noRequeueFlag)
	switch {
	case requeue && hasNoRequeue:
		return nil, fmt.Errorf("conflicting options: --requeue is set but '%s' was given to sbatch", noRequeueFlag)
	case !requeue && hasRequeue:
		return nil, fmt.Errorf("conflicting options: --requeue is not set but '%s' was given to sbatch", requeueFlag)
	case requeue && !hasRequeue:
		vec = append(vec, requeueFlag)
	case !requeue && !hasNoRequeue:
		vec = append(vec, noRequeueFlag)
	}

	for _, tok := range user {
		name := sbatchOptionName(tok)
		if name != "" && hasSbatchOption(vec, name) {
			return nil, fmt.Errorf("the sbatch option '%s' is already set by this command", tok)
		}
	}
	return append(vec, user...), nil
}

// sbatchShort maps sbatch's one-letter options to their long names.
var sbatchShort = map[string]string{
	"-A": "--account",
	"-C": "--constraint",
	"-D": "--chdir",
	"-G": "--gpus",
	"-J": "--job-name",
	"-N": "--nodes",
	"-a": "--array",
	"-c": "--cpus-per-task",
	"-d": "--dependency",
	"-e": "--error",
	"-n": "--ntasks",
	"-o": "--output",
	"-p": "--partition",
	"-q": "--qos",
	"-t": "--time",
	"-w": "--nodelist",
}

// sbatchOptionName returns the long name of the option in tok, so that
// "-N2", "-N" and "--nodes=2" all give "--nodes". Non-option tokens give "".
func sbatchOptionName(tok string) string {
	if len(tok) < 2 || tok[0] != '-' {
		return ""
	}
	name, _, _ := strings.Cut(tok, "=")
	if name[1] != '-' {
		name = name[:2]
	}
	if long, ok := sbatchShort[name]; ok {
		return long
	}
	return name
}

func hasSbatchOption(vec []string, name string) bool {
	return slices.ContainsFunc(vec, func(tok string) bool { return sbatchOptionName(tok) == name })
}
