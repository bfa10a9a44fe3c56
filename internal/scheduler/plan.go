package scheduler

import (
	"fmt"
	"slices"
)

// Job is one entry of a submission plan. After holds the indexes of earlier
// jobs it must wait for (afterok).
type Job struct {
	Request Request
	After   []int
}

// SubmitPlan submits jobs in order, turning After indexes into afterok
// dependencies on the IDs already handed out. A plan referring to a later
// or unknown job is rejected before anything is submitted. Submission stops
// at the first failure, reported as a *ChainError.
func SubmitPlan(s Scheduler, jobs []Job) ([]JobHandle, error) {
	if len(jobs) == 0 {
		return nil, ErrEmptyChain
	}
	if err := checkPlan(jobs); err != nil {
		return nil, err
	}
	handles := make([]JobHandle, 0, len(jobs))
	for i, job := range jobs {
		var ids []string
		for _, dep := range job.After {
			ids = append(ids, handles[dep].ID)
		}
		h, err := s.Submit(WithDependency(job.Request, "afterok", ids...))
		if err != nil {
			return handles, NewChainError(i, len(jobs), slices.Clone(handles), err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// checkPlan verifies that every job only waits for jobs listed before it.
func checkPlan(jobs []Job) error {
	for i, job := range jobs {
		for _, dep := range job.After {
			if dep < 0 || dep >= i {
				return NewChainError(i, len(jobs), nil,
					fmt.Errorf("job %q depends on job %d which is not submitted before it", job.Request.Name, dep))
			}
		}
	}
	return nil
}
