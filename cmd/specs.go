package cmd

import (
	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
)

// mailTypes are the values sbatch accepts for --mail-type.
var mailTypes = []string{
	"NONE", "BEGIN", "END", "FAIL", "REQUEUE", "ALL", "INVALID_DEPEND",
	"STAGE_OUT", "TIME_LIMIT", "TIME_LIMIT_90", "TIME_LIMIT_80",
	"TIME_LIMIT_50", "ARRAY_TASKS",
}

const defaultGmxLmod = "palma/2019a/gmx2018-8_foss.sh"

var submitSpecs = options.MustNewSet(
	options.Spec{Name: "job-name", Short: "J", Kind: options.String, Forward: true, Usage: "Name of the job"},
	options.Spec{Name: "output", Short: "o", Kind: options.String, Forward: true, Usage: "File for the job's standard output"},
	options.Spec{Name: "time", Short: "t", Kind: options.String, Forward: true, Usage: "Time limit, e.g. 2-00:00:00"},
	options.Spec{Name: "partition", Short: "p", Kind: options.String, Forward: true, Usage: "Partition to submit to"},
	options.Spec{Name: "nodes", Short: "N", Kind: options.String, Forward: true, Usage: "Number of nodes, or min-max"},
	options.Spec{Name: "ntasks-per-node", Kind: options.Integer, Forward: true, Usage: "Number of tasks per node"},
	options.Spec{Name: "mail-type", Kind: options.Enum, Choices: mailTypes, Forward: true, Usage: "Events that trigger an email"},
	options.Spec{Name: "mail-user", Kind: options.String, Forward: true, Usage: "User to receive email notifications"},
	options.Spec{Name: "kill-on-invalid-dep", Kind: options.Enum, Choices: []string{"yes", "no"}, Forward: true, Usage: "Cancel the job if its dependency can never be satisfied"},
	options.Spec{Name: "exclusive", Kind: options.Boolean, Forward: true, Usage: "Do not share nodes with other jobs"},
	options.Spec{Name: "input", Short: "i", Kind: options.Path, Check: options.ExistingFile, Forward: true, Usage: "File connected to the job's standard input"},
)

var mdrunSpecs = options.MustNewSet(
	options.Spec{Name: "system", Kind: options.String, Require: true, Usage: "Name of the system to simulate"},
	options.Spec{Name: "settings", Kind: options.String, Require: true, Usage: "Simulation settings, e.g. equil or pr_nvt298"},
	options.Spec{Name: "structure", Kind: options.Path, Usage: "Starting structure; required for new runs"},
	options.Spec{Name: "continue", Kind: options.Enum, Choices: []string{"0", "1", "2", "3"}, Default: options.EnumValue("0"),
		Usage: "0 new run, 1 continue, 2 new run and resubmit, 3 continue and resubmit"},
	options.Spec{Name: "nresubmits", Kind: options.Integer, Default: options.IntValue(10), Usage: "Number of continuation jobs for --continue 2 or 3"},
	options.Spec{Name: "no-backup", Kind: options.Boolean, Usage: "Do not back up existing output files"},
	options.Spec{Name: "gmx-lmod", Kind: options.String, Default: options.StringValue(defaultGmxLmod), Usage: "Module file relative to the lmod directory"},
	options.Spec{Name: "gmx-exe", Kind: options.String, Default: options.StringValue("gmx"), Usage: "Name of the Gromacs executable"},
	options.Spec{Name: "gmx-mpi-exe", Kind: options.String, Usage: "Name of the MPI Gromacs executable; required for more than one node"},
	options.Spec{Name: "grompp-flags", Kind: options.String, Default: options.StringValue(""), Usage: "Extra flags for gmx grompp"},
	options.Spec{Name: "kill-on-invalid-dep", Kind: options.Enum, Choices: []string{"yes", "no"}, Default: options.EnumValue("yes"), Forward: true,
		Usage: "Cancel the job if its dependency can never be satisfied"},
	options.Spec{Name: "mail-type", Kind: options.Enum, Choices: mailTypes, Default: options.EnumValue("FAIL"), Forward: true, Usage: "Events that trigger an email"},
	options.Spec{Name: "mail-user", Kind: options.String, Forward: true, Usage: "User to receive email notifications"},
	options.Spec{Name: "nodes", Kind: options.String, Default: options.StringValue("1"), Forward: true, Usage: "Number of nodes, or min-max"},
	options.Spec{Name: "ntasks-per-node", Kind: options.Integer, Default: options.IntValue(1), Forward: true, Usage: "Number of tasks per node"},
	options.Spec{Name: "partition", Kind: options.String, Forward: true, Usage: "Partition to submit to"},
	options.Spec{Name: "time", Kind: options.String, Forward: true, Usage: "Time limit, e.g. 2-00:00:00"},
	options.Spec{Name: "non-exclusive", Kind: options.Boolean, Usage: "Share nodes with other jobs"},
	options.Spec{Name: "requeue", Kind: options.Boolean, Usage: "Allow Slurm to requeue the job"},
	options.Spec{Name: "sbatch", Kind: options.String, Default: options.StringValue(""), Usage: "Further sbatch options as one quoted string"},
)

var analysisSpecs = options.MustNewSet(
	options.Spec{Name: "system", Kind: options.String, Require: true, Usage: "Name of the simulated system"},
	options.Spec{Name: "settings", Kind: options.String, Require: true, Usage: "Settings of the simulation to analyze"},
	options.Spec{Name: "scripts", Kind: options.String, Require: true, Usage: "Analysis script names and/or group numbers, space separated"},
	options.Spec{Name: "begin", Kind: options.Float, Default: options.FloatValue(0), Usage: "First frame (ps) to read"},
	options.Spec{Name: "end", Kind: options.Float, Usage: "Last frame (ps) to read; default: last time in the .log file"},
	options.Spec{Name: "every", Kind: options.Float, Default: options.FloatValue(1), Usage: "Only use frames at multiples of this time (ps)"},
	options.Spec{Name: "beginfit", Kind: options.Float, Default: options.FloatValue(-1), Usage: "Start of the MSD fit (ps); -1 is 10%"},
	options.Spec{Name: "endfit", Kind: options.Float, Default: options.FloatValue(-1), Usage: "End of the MSD fit (ps); -1 is 90%"},
	options.Spec{Name: "restart", Kind: options.Float, Default: options.FloatValue(1000), Usage: "Time between MSD restarting points (ps)"},
	options.Spec{Name: "binwidth", Kind: options.Float, Default: options.FloatValue(0.005), Usage: "Bin width (nm) of distance histograms"},
	options.Spec{Name: "zmin", Kind: options.Float, Default: options.FloatValue(0), Usage: "Lower edge of the slab (nm)"},
	options.Spec{Name: "zmax", Kind: options.Float, Usage: "Upper edge of the slab (nm); default: box length from the .gro file"},
	options.Spec{Name: "slabwidth", Kind: options.Float, Default: options.FloatValue(0.1), Usage: "Slab width (nm) for --discretize and --center-slab"},
	options.Spec{Name: "discretize", Kind: options.Boolean, Usage: "Split [zmin, zmax) into slabs and submit one job per slab"},
	options.Spec{Name: "center-slab", Kind: options.Boolean, Usage: "Analyze one slab of --slabwidth in the box center"},
	options.Spec{Name: "gmx-lmod", Kind: options.String, Default: options.StringValue(defaultGmxLmod), Usage: "Module file relative to the lmod directory"},
	options.Spec{Name: "gmx-exe", Kind: options.String, Default: options.StringValue("gmx"), Usage: "Name of the Gromacs executable"},
)
