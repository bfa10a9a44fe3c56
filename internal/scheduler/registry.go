package scheduler

import (
	"io"
	"sync"
)

var (
	activeScheduler Scheduler
	schedulerMu     sync.RWMutex
)

// SetActiveScheduler configures the scheduler instance that the application should use.
// Passing nil clears any previously configured scheduler.
func SetActiveScheduler(s Scheduler) {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	activeScheduler = s
}

// ActiveScheduler returns the currently configured scheduler instance (may be nil).
func ActiveScheduler() Scheduler {
	schedulerMu.RLock()
	defer schedulerMu.RUnlock()
	return activeScheduler
}

// ClearActiveScheduler resets the active scheduler reference.
func ClearActiveScheduler() {
	SetActiveScheduler(nil)
}

// Init configures the active scheduler. In dry-run mode commands are printed
// to out and sbatch need not exist. Otherwise sbatchBin (or sbatch from
// PATH when empty) must be present.
func Init(sbatchBin string, dryRun bool, out io.Writer) (SchedulerType, error) {
	if dryRun {
		SetActiveScheduler(NewDryRunScheduler(sbatchBin, out))
		return SchedulerDryRun, nil
	}
	sched, err := NewSlurmSchedulerWithBinary(sbatchBin)
	if err != nil {
		ClearActiveScheduler()
		return SchedulerUnknown, err
	}
	SetActiveScheduler(sched)
	return SchedulerSLURM, nil
}

// Active returns the configured scheduler or ErrSchedulerNotAvailable.
func Active() (Scheduler, error) {
	s := ActiveScheduler()
	if s == nil {
		return nil, ErrSchedulerNotAvailable
	}
	return s, nil
}
