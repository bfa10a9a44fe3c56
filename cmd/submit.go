package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var submitContext string

// directiveReader is implemented by schedulers that can list the #SBATCH
// lines of a script.
type directiveReader interface {
	ReadDirectives(path string) ([]string, error)
}

var submitCmd = &cobra.Command{
	Use:   "submit [flags] <batch-script> [script-args...]",
	Short: "Submit any batch script with options from the INI file",
	Long: `Submit a batch script with sbatch.

Options are taken from the command line, then from the [submit] and [sbatch]
sections of the INI file. With --context a.b the sections [submit.a.b],
[submit.a] and [submit] (and likewise for sbatch) are consulted, the most
specific first. Flags not listed below are passed to sbatch unchanged; such
a flag takes all following words as its value, so give it as --flag=value
or put the batch script first.`,
	Example: `  hpcss submit job.sh
  hpcss submit --context simulation -t 1-00:00:00 job.sh arg1
  hpcss submit --dry-run --qos=long job.sh`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE:               runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	local := pflag.NewFlagSet("submit", pflag.ContinueOnError)
	local.StringVar(&submitContext, "context", "", "Dot separated section path, e.g. simulation.gmx")

	// The section chain depends on --context, which is only known after
	// parsing; resolution therefore happens in two steps.
	p := pipeline{specs: submitSpecs, local: local}
	in, pos, err := p.parse(cmd, args)
	if err != nil {
		return err
	}
	p.known, p.unknown = contextSections(submitContext)

	res, pos, err := p.resolve(in, pos)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return fmt.Errorf("missing batch script")
	}
	if err := validateSlurmValues(res); err != nil {
		return err
	}
	script, scriptArgs := pos[0], pos[1:]
	if err := precheck.Files(precheck.File("batch script", script)); err != nil {
		return err
	}

	sched, err := initScheduler()
	if err != nil {
		return err
	}
	if dr, ok := sched.(directiveReader); ok && utils.DebugMode {
		if directives, err := dr.ReadDirectives(script); err == nil && len(directives) > 0 {
			utils.PrintDebug("#SBATCH directives in %s: %s", script, options.QuoteCommand(directives))
		}
	}

	h, err := sched.Submit(scheduler.Request{
		Args:    options.Assemble(res),
		Script:  script,
		PosArgs: scriptArgs,
	})
	if err != nil {
		return err
	}
	reportJobs([]scheduler.JobHandle{h})
	return nil
}

// contextSections returns the known and pass-through section chains for a
// dotted context such as "simulation.gmx".
func contextSections(ctx string) (known, unknown []string) {
	var parts []string
	if ctx = strings.Trim(ctx, "."); ctx != "" {
		parts = strings.Split(ctx, ".")
	}
	return options.Sections("submit", parts...), options.Sections("sbatch", parts...)
}

// validateSlurmValues checks the formats sbatch would otherwise reject
// only after queueing earlier jobs of a chain.
func validateSlurmValues(res *options.Resolved) error {
	if t := res.Text("time"); t != "" {
		d, err := utils.ParseSlurmTime(t)
		if err != nil {
			return fmt.Errorf("--time: %w", err)
		}
		utils.PrintDebug("Time limit: %s", utils.FormatSlurmTime(d))
	}
	if n := res.Text("nodes"); n != "" {
		if _, _, err := utils.ParseNodeRange(n); err != nil {
			return fmt.Errorf("--nodes: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
