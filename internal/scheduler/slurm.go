package scheduler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
	"github.com/andthum/hpc-submit-scripts-sub001/internal/utils"
)

// MinSlurmVersion is the oldest Slurm release whose sbatch output has been
// checked against the acknowledgement table.
const MinSlurmVersion = "17.11"

// SlurmScheduler submits jobs by running sbatch
type SlurmScheduler struct {
	sbatchBin   string
	contract    AckContract
	directiveRe *regexp.Regexp
}

// NewSlurmScheduler creates a new SLURM scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary(sbatchBin)
}

func newSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath := sbatchBin
	if binPath == "" || !strings.ContainsRune(binPath, filepath.Separator) {
		name := binPath
		if name == "" {
			name = "sbatch"
		}
		var err error
		binPath, err = exec.LookPath(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
		}
	}

	contract, _ := Contract(DefaultContract)
	return &SlurmScheduler{
		sbatchBin:   binPath,
		contract:    contract,
		directiveRe: regexp.MustCompile(`^\s*#SBATCH\s+(.+)$`),
	}, nil
}

// SetContract selects the acknowledgement format by version.
func (s *SlurmScheduler) SetContract(version int) error {
	c, err := Contract(version)
	if err != nil {
		return err
	}
	s.contract = c
	return nil
}

// Binary returns the sbatch path in use.
func (s *SlurmScheduler) Binary() string {
	return s.sbatchBin
}

// GetInfo returns information about the SLURM scheduler
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	info := &SchedulerInfo{
		Type:       string(SchedulerSLURM),
		Binary:     s.sbatchBin,
		MinVersion: MinSlurmVersion,
		Contract:   s.contract.Version,
		InJob:      IsInsideJob(),
		Available:  s.sbatchBin != "",
	}

	if version, err := s.getSlurmVersion(); err == nil {
		info.Version = version
		info.Supported = SupportsVersion(version, MinSlurmVersion)
	} else {
		utils.PrintDebug("sbatch --version failed: %v", err)
	}

	return info
}

// CheckVersion returns a *VersionError if sbatch is older than
// MinSlurmVersion. An unknown version is accepted.
func (s *SlurmScheduler) CheckVersion() error {
	version, err := s.getSlurmVersion()
	if err != nil {
		return nil
	}
	if !SupportsVersion(version, MinSlurmVersion) {
		return &VersionError{Version: version, Minimum: MinSlurmVersion}
	}
	return nil
}

// getSlurmVersion attempts to get the SLURM version
func (s *SlurmScheduler) getSlurmVersion() (string, error) {
	cmd := exec.Command(s.sbatchBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	// Parse version from output like "slurm 23.02.6"
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}

	return versionStr, nil
}

// Submit runs sbatch for req. Standard output and standard error are
// captured separately; only stdout is parsed for the job ID.
func (s *SlurmScheduler) Submit(req Request) (JobHandle, error) {
	name := req.Name
	if name == "" {
		name = filepath.Base(req.Script)
	}
	if !utils.FileExists(req.Script) {
		return JobHandle{}, fmt.Errorf("%w: %s", ErrScriptNotFound, req.Script)
	}

	contract := s.contract
	if options.HasOption(req.Args, "--parsable") {
		contract, _ = Contract(2)
	}
	req.Args = contract.apply(req.Args)

	argv := req.Argv(s.sbatchBin)
	utils.PrintDebug("Running %s", utils.StyleCommand(options.QuoteCommand(argv)))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = req.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return JobHandle{}, NewSubmissionError(string(SchedulerSLURM), name, code, stderr.String(), err)
	}
	if stderr.Len() > 0 {
		// sbatch reports warnings on stderr even when it succeeds.
		utils.PrintWarning("sbatch: %s", strings.TrimSpace(stderr.String()))
	}

	h, err := contract.Parse(stdout.String())
	if err != nil {
		return JobHandle{}, err
	}
	h.Name = name
	return h, nil
}

// ReadDirectives returns the options of the #SBATCH lines in a batch
// script, split into words. Parsing stops at the first command line, as
// sbatch does.
func (s *SlurmScheduler) ReadDirectives(scriptPath string) ([]string, error) {
	lines, err := readFileLines(scriptPath)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := s.directiveRe.FindStringSubmatch(line); m != nil {
			words, err := options.SplitShell(stripDirectiveComment(m[1]))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", scriptPath, err)
			}
			out = append(out, words...)
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
	}
	return out, nil
}

// SupportsVersion reports whether a Slurm version string such as "23.02.6"
// is at least min. Unparseable versions compare as unsupported.
func SupportsVersion(version, min string) bool {
	v, m := canonicalVersion(version), canonicalVersion(min)
	if v == "" || m == "" {
		return false
	}
	return semver.Compare(v, m) >= 0
}
