package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/ini"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/precheck"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// errHelpShown stops a command after it printed its help.
var errHelpShown = errors.New("help shown")

// pipeline is the shared front half of every submitting command: parse the
// arguments, read the INI file, resolve options and check input paths.
type pipeline struct {
	specs   *options.Set
	known   []string
	unknown []string
	local   *pflag.FlagSet // command flags that are not options, e.g. --context
}

// run parses args and resolves them against the INI file. The returned
// positional arguments are whatever was not attached to a flag.
func (p pipeline) run(cmd *cobra.Command, args []string) (*options.Resolved, []string, error) {
	in, pos, err := p.parse(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	return p.resolve(in, pos)
}

// parse splits args into options, pass-through flags and positional
// arguments, and applies the global flags found among them.
func (p pipeline) parse(cmd *cobra.Command, args []string) (options.Input, []string, error) {
	extra := pflag.NewFlagSet("global", pflag.ContinueOnError)
	extra.AddFlagSet(cmd.Root().PersistentFlags())
	if p.local != nil {
		extra.AddFlagSet(p.local)
	}
	in, pos, err := options.ParseArgs(p.specs, args, extra)
	if err != nil {
		return options.Input{}, nil, helpOrError(cmd, err)
	}
	applyGlobalFlags()
	return in, pos, nil
}

// helpOrError prints the help for -h/--help and passes other errors on.
func helpOrError(cmd *cobra.Command, err error) error {
	if !errors.Is(err, pflag.ErrHelp) {
		return err
	}
	if err := cmd.Help(); err != nil {
		return err
	}
	return errHelpShown
}

// resolve is run without the argument parsing; tests call it directly.
func (p pipeline) resolve(in options.Input, pos []string) (*options.Resolved, []string, error) {
	doc, err := loadIni()
	if err != nil {
		return nil, nil, err
	}
	res, err := options.Resolver{Specs: p.specs, Known: p.known, Unknown: p.unknown}.Resolve(doc, in)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range res.Unrecognized() {
		utils.PrintWarning("Ignoring unrecognized config option %s in %s", key, doc.Path)
	}
	for _, sp := range res.Set().Specs() {
		utils.PrintDebug("%s = %q (%s)", sp.Name, res.Text(sp.Name), res.Source(sp.Name))
	}
	if err := precheck.Check(res); err != nil {
		return nil, nil, err
	}
	return res, pos, nil
}

// loadIni reads the job INI file. A name containing a path separator must
// exist; a bare name is searched in the working directory, ~/.hpcss and the
// project root, and a missing file means no configuration.
func loadIni() (*ini.Document, error) {
	name := config.Global.IniName
	if strings.ContainsRune(name, os.PathSeparator) {
		utils.PrintDebug("Reading INI file %s", name)
		return ini.ParseFile(name)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	home, _ := os.UserHomeDir()
	if path, ok := ini.FindConfig(cwd, home, config.Global.ProjectRoot, name); ok {
		utils.PrintDebug("Reading INI file %s", path)
		return ini.ParseFile(path)
	}
	utils.PrintDebug("No INI file %s found", name)
	return ini.NewDocument(), nil
}

// userArgs returns the sbatch options the user added freely: pass-through
// flags from the command line and sbatch.* sections, then the --sbatch
// string if the command has one.
func userArgs(res *options.Resolved, sbatchOpt string) ([]string, error) {
	vec := options.PassThroughArgs(res)
	if sbatchOpt == "" {
		return vec, nil
	}
	tokens, err := options.SplitShell(res.Text(sbatchOpt))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", sbatchOpt, err)
	}
	return append(vec, tokens...), nil
}

// reportJobs prints the queued jobs. In quiet mode only the IDs are
// printed, one per line, for use in scripts.
func reportJobs(handles []scheduler.JobHandle) {
	for _, h := range handles {
		if utils.QuietMode {
			fmt.Fprintln(utils.Stdout, h.String())
			continue
		}
		utils.PrintSuccess("Submitted %s as job %s", utils.StyleName(h.Name), utils.StyleNumber(h.String()))
	}
}

// reportChainError lists the jobs that stayed queued before a failure.
func reportChainError(err error) error {
	var ce *scheduler.ChainError
	if errors.As(err, &ce) && len(ce.Submitted) > 0 {
		utils.PrintWarning("%d job(s) were queued before the failure and stay queued", len(ce.Submitted))
		reportJobs(ce.Submitted)
	}
	return err
}

// requireNoPositional rejects stray arguments of commands without any.
func requireNoPositional(pos []string) error {
	if len(pos) > 0 {
		return fmt.Errorf("unexpected argument(s): %s", strings.Join(pos, " "))
	}
	return nil
}

// scriptRequirements checks every distinct batch script once.
func scriptRequirements(jobs []scheduler.Job) []precheck.Requirement {
	var seen []string
	var reqs []precheck.Requirement
	for _, j := range jobs {
		if slices.Contains(seen, j.Request.Script) {
			continue
		}
		seen = append(seen, j.Request.Script)
		reqs = append(reqs, precheck.File("batch script", j.Request.Script))
	}
	return reqs
}
