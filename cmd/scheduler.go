package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/config"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display information about sbatch",
	Long: `Display information about the sbatch binary jobs are submitted with.

Shows the binary path, the Slurm version, whether that version is supported
and the acknowledgement format used to read job IDs.`,
	Example: `  hpcss scheduler                       # Show scheduler information
  hpcss scheduler --sbatch-bin ~/bin/sbatch`,
	Args: cobra.NoArgs,
	Run:  runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) {
	sched, err := scheduler.NewSlurmSchedulerWithBinary(config.Global.SbatchBin)
	if err != nil {
		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("%v", err)
		utils.PrintHint("Install Slurm, add sbatch to PATH, or set it with %s", utils.StyleCommand("hpcss config set sbatch_bin /path/to/sbatch"))
		return
	}
	if err := sched.SetContract(config.Global.Contract); err != nil {
		utils.PrintWarning("%v", err)
	}

	info := sched.GetInfo()
	fmt.Println("Scheduler Information:")
	fmt.Printf("  Type:       %s\n", utils.StyleInfo(info.Type))
	fmt.Printf("  Binary:     %s\n", utils.StylePath(info.Binary))
	if info.Version != "" {
		fmt.Printf("  Version:    %s\n", utils.StyleNumber(info.Version))
	} else {
		fmt.Printf("  Version:    %s\n", utils.StyleWarning("unknown"))
	}
	fmt.Printf("  Minimum:    %s\n", utils.StyleNumber(info.MinVersion))
	fmt.Printf("  Ack format: %s\n", utils.StyleNumber(info.Contract))

	switch {
	case info.Version == "":
		fmt.Printf("  Status:     %s\n", utils.StyleWarning("Available (version not detected)"))
	case info.Supported:
		fmt.Printf("  Status:     %s\n", utils.StyleSuccess("Available"))
	default:
		fmt.Printf("  Status:     %s\n", utils.StyleError("Unsupported version"))
	}
	if info.InJob {
		fmt.Println()
		fmt.Println("You are inside a Slurm job; jobs you submit from here are independent of it.")
	}
}
