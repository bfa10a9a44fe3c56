package config

import (
	"os"
	"path/filepath"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/ini"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/scheduler"
)

const VERSION = "0.4.0"

// Config holds global application settings
type Config struct {
	Debug   bool
	Quiet   bool
	DryRun  bool
	Version string

	ProgramDir  string
	ProjectRoot string // holds bash/, lmod/, simulation/ and analysis/
	IniName     string // INI file name looked up by FindConfig
	SbatchBin   string // empty means sbatch from PATH
	Contract    int    // sbatch acknowledgement format
}

// Global holds the singleton configuration instance
var Global Config

func LoadDefaults(executablePath string) {
	programDir := filepath.Dir(executablePath)
	projectRoot := filepath.Dir(programDir)

	// Developer Mode Check
	if _, err := os.Stat(filepath.Join(projectRoot, "simulation")); os.IsNotExist(err) {
		cwd, _ := os.Getwd()
		projectRoot = cwd
		programDir = filepath.Join(cwd, "bin")
	}

	Global = Config{
		Version:     VERSION,
		ProgramDir:  programDir,
		ProjectRoot: projectRoot,
		IniName:     ini.DefaultName,
		Contract:    scheduler.DefaultContract,
	}
}

// BashDir is the directory of shared bash helpers passed to every script.
func (c *Config) BashDir() string { return filepath.Join(c.ProjectRoot, "bash") }

// LmodFile resolves a module file given relative to the lmod directory.
func (c *Config) LmodFile(name string) string { return filepath.Join(c.ProjectRoot, "lmod", name) }

// MdrunScript is the batch script running Gromacs mdrun.
func (c *Config) MdrunScript() string {
	return filepath.Join(c.ProjectRoot, "simulation", "gmx", "gmx_mdrun.sh")
}

// AnalysisDir holds the Gromacs analysis batch scripts.
func (c *Config) AnalysisDir() string {
	return filepath.Join(c.ProjectRoot, "analysis", "lintf2_ether", "gmx")
}
