package scheduler

import (
	"fmt"
	"regexp"
	"strings"
)

// AckContract describes one sbatch acknowledgement format: how to ask for
// it and how to read the job ID from it.
type AckContract struct {
	Version int
	Flag    string // sbatch flag selecting the format, empty for the default
	Pattern *regexp.Regexp
}

// contracts is the versioned table of supported acknowledgement formats.
var contracts = []AckContract{
	{
		Version: 1,
		Pattern: regexp.MustCompile(`Submitted batch job (\d+)`),
	},
	{
		Version: 2,
		Flag:    "--parsable",
		Pattern: regexp.MustCompile(`(?m)^(\d+)(?:;(\S+))?\s*$`),
	},
}

// DefaultContract is the format used unless configured otherwise.
const DefaultContract = 1

// Contract returns the acknowledgement format with the given version.
func Contract(version int) (AckContract, error) {
	for _, c := range contracts {
		if c.Version == version {
			return c, nil
		}
	}
	return AckContract{}, fmt.Errorf("%w: version %d", ErrUnknownContract, version)
}

// Contracts returns all known acknowledgement formats.
func Contracts() []AckContract {
	out := make([]AckContract, len(contracts))
	copy(out, contracts)
	return out
}

// Parse extracts the job from sbatch's standard output.
func (c AckContract) Parse(stdout string) (JobHandle, error) {
	m := c.Pattern.FindStringSubmatch(stdout)
	if len(m) < 2 {
		return JobHandle{}, fmt.Errorf("%w: %q", ErrJobIDParseFailed, strings.TrimSpace(stdout))
	}
	h := JobHandle{ID: m[1]}
	if len(m) > 2 {
		h.Cluster = m[2]
	}
	return h, nil
}

// apply adds the format flag to args unless it is already there.
func (c AckContract) apply(args []string) []string {
	if c.Flag == "" {
		return args
	}
	for _, a := range args {
		if a == c.Flag {
			return args
		}
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, c.Flag)
	return append(out, args...)
}
