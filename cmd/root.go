package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var (
	debugMode    bool
	quietMode    bool
	dryRunMode   bool
	sbatchBinArg string
	iniArg       string
	contractArg  int
)

var rootCmd = &cobra.Command{
	Use:           "hpcss",
	Short:         "HPC Submit Scripts: submit Gromacs simulations and analyses to Slurm.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		exe, err := os.Executable()
		if err != nil {
			utils.PrintError("Failed to determine executable path: %v", err)
			os.Exit(1)
		}

		// Step 1: Load defaults (project layout, INI name)
		config.LoadDefaults(exe)

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Repair a stale sbatch path in an existing config file
		if updated, err := config.AutoDetectAndSave(); err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected sbatch saved to: %s", configPath)
			}
		}

		// Step 4: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		applyGlobalFlags()
	},
}

// applyGlobalFlags copies the persistent flags into the global config.
// Commands that parse their own arguments call it again afterwards.
func applyGlobalFlags() {
	if debugMode {
		utils.DebugMode = true
		config.Global.Debug = true
	}
	if quietMode {
		utils.QuietMode = true
		config.Global.Quiet = true
	}
	if dryRunMode {
		config.Global.DryRun = true
	}
	if sbatchBinArg != "" {
		config.Global.SbatchBin = sbatchBinArg
	}
	if iniArg != "" {
		config.Global.IniName = iniArg
	}
	if contractArg > 0 {
		config.Global.Contract = contractArg
	}
}

// initScheduler activates the dry-run printer or the sbatch submitter.
func initScheduler() (scheduler.Scheduler, error) {
	typ, err := scheduler.Init(config.Global.SbatchBin, config.Global.DryRun, utils.Stdout)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.Active()
	if err != nil {
		return nil, err
	}
	if slurm, ok := sched.(*scheduler.SlurmScheduler); ok {
		if err := slurm.SetContract(config.Global.Contract); err != nil {
			return nil, err
		}
		if err := slurm.CheckVersion(); err != nil {
			utils.PrintWarning("%v", err)
		}
		if scheduler.IsInsideJob() {
			utils.PrintNote("Submitting from inside a Slurm job")
		}
	}
	utils.PrintDebug("Scheduler: %s", typ)
	return sched, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errHelpShown) {
			return
		}
		// sbatch explains its own failures on stderr; show that text as is.
		var se *scheduler.SubmissionError
		if errors.As(err, &se) && strings.TrimSpace(se.Stderr) != "" {
			utils.PrintError("%s submission failed for job %s (exit status %d)", se.Scheduler, se.JobName, se.ExitCode)
			fmt.Fprintln(os.Stderr, strings.TrimSpace(se.Stderr))
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions.
	// Global flags have no shorthands: one-letter flags belong to sbatch.
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVar(&quietMode, "quiet", false, "Print only job IDs, warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&dryRunMode, "dry-run", false, "Print the sbatch commands instead of running them")
	rootCmd.PersistentFlags().StringVar(&sbatchBinArg, "sbatch-bin", "", "Path to the sbatch binary (default: sbatch from PATH)")
	rootCmd.PersistentFlags().StringVar(&iniArg, "ini", "", "INI file name or path (default: hpcssrc.ini)")
	rootCmd.PersistentFlags().IntVar(&contractArg, "ack-format", 0, "sbatch acknowledgement format: 1 (plain) or 2 (--parsable)")
}
