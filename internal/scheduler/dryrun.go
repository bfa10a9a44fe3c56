package scheduler

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/andthum/hpc-submit-scripts-sub001/internal/options"
)

// DryRunScheduler prints the sbatch command lines instead of running them
// and hands out increasing synthetic job IDs so dependencies stay readable.
type DryRunScheduler struct {
	Bin string
	Out io.Writer

	mu   sync.Mutex
	next int
}

// NewDryRunScheduler returns a dry-run submitter printing to out.
func NewDryRunScheduler(bin string, out io.Writer) *DryRunScheduler {
	if bin == "" {
		bin = "sbatch"
	}
	return &DryRunScheduler{Bin: bin, Out: out}
}

// Submit prints the quoted command line and returns a synthetic job.
func (d *DryRunScheduler) Submit(req Request) (JobHandle, error) {
	d.mu.Lock()
	d.next++
	id := d.next
	d.mu.Unlock()

	if _, err := fmt.Fprintln(d.Out, options.QuoteCommand(req.Argv(d.Bin))); err != nil {
		return JobHandle{}, err
	}
	return JobHandle{ID: "dryrun" + strconv.Itoa(id), Name: req.Name}, nil
}

// GetInfo describes the dry-run submitter.
func (d *DryRunScheduler) GetInfo() *SchedulerInfo {
	return &SchedulerInfo{
		Type:      string(SchedulerDryRun),
		Binary:    d.Bin,
		InJob:     IsInsideJob(),
		Available: true,
	}
}
