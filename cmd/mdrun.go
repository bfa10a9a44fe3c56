package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/gmx"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var mdrunPipeline = pipeline{
	specs:   mdrunSpecs,
	known:   options.Sections("submit", "simulation", "gmx"),
	unknown: options.Sections("sbatch", "simulation", "gmx"),
}

var mdrunCmd = &cobra.Command{
	Use:   "mdrun [flags]",
	Short: "Submit a Gromacs mdrun job, optionally with continuation jobs",
	Long: `Submit gmx_mdrun.sh to run a molecular dynamics simulation with Gromacs.

Input files are expected in the working directory and named after the system
and settings: <settings>_<system>.mdp, <system>.top and, when continuing,
<settings>_<system>.tpr and <settings>_out_<system>.cpt.

Options not given on the command line are read from the sections
[submit.simulation.gmx], [submit.simulation] and [submit] of the INI file.
sbatch options can be added with --sbatch, as unknown flags, or in the
[sbatch.simulation.gmx], [sbatch.simulation] and [sbatch] sections.`,
	Example: `  hpcss mdrun --system LiTFSI_PEO --settings equil --structure start.gro
  hpcss mdrun --system LiTFSI_PEO --settings pr_nvt423 --continue 3 --nresubmits 5
  hpcss mdrun --system s --settings equil --structure s.gro --sbatch "--qos long"`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE:               runMdrun,
}

func runMdrun(cmd *cobra.Command, args []string) error {
	res, pos, err := mdrunPipeline.run(cmd, args)
	if err != nil {
		return err
	}
	if err := requireNoPositional(pos); err != nil {
		return err
	}
	if err := validateSlurmValues(res); err != nil {
		return err
	}

	// The enum restricts continue to 0-3.
	cont, _ := strconv.Atoi(res.Text("continue"))
	m := &gmx.Mdrun{
		Names:       gmx.Names{System: res.Text("system"), Settings: res.Text("settings")},
		Structure:   res.Text("structure"),
		Continue:    cont,
		Nresubmits:  res.Int("nresubmits"),
		Backup:      !res.Bool("no-backup"),
		Nodes:       res.Text("nodes"),
		NtasksNode:  res.Int("ntasks-per-node"),
		BashDir:     config.Global.BashDir(),
		Lmod:        config.Global.LmodFile(res.Text("gmx-lmod")),
		GmxExe:      res.Text("gmx-exe"),
		GmxMpiExe:   res.Text("gmx-mpi-exe"),
		GromppFlags: res.Text("grompp-flags"),
	}
	if err := m.Validate(); err != nil {
		return err
	}

	script := config.Global.MdrunScript()
	reqs := append(m.Inputs(),
		precheck.File("batch script", script),
		precheck.Dir("bash library", m.BashDir),
		precheck.File("--gmx-lmod", m.Lmod),
	)
	if err := precheck.Files(reqs...); err != nil {
		return err
	}
	if m.StrayIndexFiles(".") {
		utils.PrintWarning("The working directory contains .ndx files, but none is named %s.ndx; grompp will not use them", m.Names.System)
	}

	nsteps, err := gmx.NstepsFromMDP(m.Names.MDP())
	if err != nil {
		return err
	}
	utils.PrintDebug("nsteps = %d", nsteps)

	user, err := userArgs(res, "sbatch")
	if err != nil {
		return err
	}
	sbatchArgs, err := gmx.MdrunSbatchArgs(options.AssembleDeclared(res), user, m.Names,
		res.Bool("non-exclusive"), res.Bool("requeue"))
	if err != nil {
		return err
	}

	sched, err := initScheduler()
	if err != nil {
		return err
	}
	handles, err := scheduler.Chain(sched, m.Requests(script, sbatchArgs, nsteps))
	if err != nil {
		return reportChainError(err)
	}
	reportJobs(handles)
	return nil
}

func init() {
	rootCmd.AddCommand(mdrunCmd)
}
