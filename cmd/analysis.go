package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/gmx"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var analysisPipeline = pipeline{
	specs:   analysisSpecs,
	known:   options.Sections("submit", "analysis", "lintf2_ether", "gmx"),
	unknown: options.Sections("sbatch", "analysis", "lintf2_ether", "gmx"),
}

var analysisCmd = &cobra.Command{
	Use:   "analysis [flags]",
	Short: "Submit Gromacs analysis jobs for a finished simulation",
	Long: `Submit one job per selected analysis script.

--scripts takes script names and group numbers separated by spaces, e.g.
"energy msd_electrolyte 4.1". Groups 0 and 1 also prepare the index file and
the unwrapped trajectories and let dependent scripts wait for them.

Options not given on the command line are read from the sections
[submit.analysis.lintf2_ether.gmx] up to [submit] of the INI file; sbatch
options from the matching [sbatch.*] sections or as unknown flags.`,
	Example: `  hpcss analysis --system LiTFSI_PEO --settings pr_nvt423 --scripts 0
  hpcss analysis --system s --settings pr --scripts "density-z 4.2" --discretize --zmax 10
  hpcss analysis --scripts energy --system s --settings pr --end 100000 --dry-run`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE:               runAnalysis,
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	res, pos, err := analysisPipeline.run(cmd, args)
	if err != nil {
		return err
	}
	if err := requireNoPositional(pos); err != nil {
		return err
	}

	tokens, err := gmx.ParseSelection(res.Text("scripts"))
	if err != nil {
		return err
	}
	a := &gmx.Analysis{
		Names:      gmx.Names{System: res.Text("system"), Settings: res.Text("settings")},
		BashDir:    config.Global.BashDir(),
		Lmod:       config.Global.LmodFile(res.Text("gmx-lmod")),
		GmxExe:     os.ExpandEnv(res.Text("gmx-exe")),
		Begin:      res.Float("begin"),
		End:        res.Float("end"),
		EndSet:     res.Get("end").IsSet(),
		Every:      res.Float("every"),
		BeginFit:   res.Float("beginfit"),
		EndFit:     res.Float("endfit"),
		Restart:    res.Float("restart"),
		BinWidth:   res.Float("binwidth"),
		ZMin:       res.Float("zmin"),
		ZMax:       res.Float("zmax"),
		ZMaxSet:    res.Get("zmax").IsSet(),
		SlabWidth:  res.Float("slabwidth"),
		Discretize: res.Bool("discretize"),
		CenterSlab: res.Bool("center-slab"),
	}
	if err := a.Complete(tokens); err != nil {
		return err
	}
	utils.PrintDebug("end = %g, zmin = %g, zmax = %g, nbins = %d", a.End, a.ZMin, a.ZMax, a.NBins)

	reqs := append(a.Inputs(tokens),
		precheck.Dir("bash library", a.BashDir),
		precheck.File("--gmx-lmod", a.Lmod),
	)
	if err := precheck.Files(reqs...); err != nil {
		return err
	}

	plan := a.Plan(tokens)
	for _, name := range plan.Skipped {
		utils.PrintNote("Skipping %s: system %s has no electrodes", name, a.Names.System)
	}
	if len(plan.Jobs) == 0 {
		utils.PrintWarning("Nothing to submit for --scripts %q", strings.Join(tokens, " "))
		return nil
	}

	jobs := a.Jobs(plan, config.Global.AnalysisDir(), options.PassThroughArgs(res))
	if err := precheck.Files(scriptRequirements(jobs)...); err != nil {
		return err
	}

	sched, err := initScheduler()
	if err != nil {
		return err
	}
	handles, err := scheduler.SubmitPlan(sched, jobs)
	if err != nil {
		return reportChainError(err)
	}
	reportJobs(handles)
	return nil
}

func init() {
	rootCmd.AddCommand(analysisCmd)
}
