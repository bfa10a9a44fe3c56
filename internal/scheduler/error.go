package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrSchedulerNotFound indicates the sbatch binary was not found
	ErrSchedulerNotFound = errors.New("sbatch binary not found in PATH")

	// ErrSchedulerNotAvailable indicates no submitter has been configured
	ErrSchedulerNotAvailable = errors.New("scheduler is not available")

	// ErrScriptNotFound indicates the batch script was not found
	ErrScriptNotFound = errors.New("batch script not found")

	// ErrJobIDParseFailed indicates parsing the job ID from sbatch output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from sbatch output")

	// ErrUnknownContract indicates an unsupported acknowledgement format version
	ErrUnknownContract = errors.New("unknown sbatch acknowledgement format")

	// ErrEmptyChain indicates Chain was called without requests
	ErrEmptyChain = errors.New("no jobs to submit")
)

// SubmissionError reports a non-zero exit of sbatch. Stderr is kept
// verbatim because it is the only explanation Slurm gives.
type SubmissionError struct {
	Scheduler string // Scheduler name
	JobName   string // Job label
	ExitCode  int    // Exit status of sbatch, -1 if it did not run
	Stderr    string // Captured standard error
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("%s submission failed for job %s: %v", e.Scheduler, e.JobName, e.Err)
	if s := strings.TrimRight(e.Stderr, "\n"); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ChainError reports the link of a job chain that failed. Jobs submitted
// before it stay queued.
type ChainError struct {
	Index     int         // Index of the failed request
	Total     int         // Number of requests in the chain
	Submitted []JobHandle // Jobs queued before the failure
	Err       error       // Underlying error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("job %d of %d failed (%d already queued): %v",
		e.Index+1, e.Total, len(e.Submitted), e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// VersionError reports an sbatch release older than required.
type VersionError struct {
	Version string
	Minimum string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("sbatch version %s is older than the minimum supported %s", e.Version, e.Minimum)
}

// Helper functions for creating errors

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler, jobName string, exitCode int, stderr string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		JobName:   jobName,
		ExitCode:  exitCode,
		Stderr:    stderr,
		Err:       err,
	}
}

// NewChainError creates a new ChainError
func NewChainError(index, total int, submitted []JobHandle, err error) *ChainError {
	return &ChainError{
		Index:     index,
		Total:     total,
		Submitted: submitted,
		Err:       err,
	}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// IsChainError checks if an error is a ChainError
func IsChainError(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce)
}

// IsVersionError checks if an error is a VersionError
func IsVersionError(err error) bool {
	var ve *VersionError
	return errors.As(err, &ve)
}
