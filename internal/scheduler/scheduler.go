// Package scheduler submits batch jobs to Slurm through sbatch
package scheduler

import (
	"os"
	"slices"
	"strings"
)

// SchedulerType represents the type of job scheduler
type SchedulerType string

const (
	SchedulerUnknown SchedulerType = ""
	SchedulerSLURM   SchedulerType = "SLURM"
	SchedulerDryRun  SchedulerType = "DRY-RUN"
)

// SchedulerInfo holds information about the configured scheduler
type SchedulerInfo struct {
	Type       string // Scheduler type (e.g., "SLURM")
	Binary     string // Path to scheduler binary (e.g., "/usr/bin/sbatch")
	Version    string // Scheduler version (if available)
	MinVersion string // Oldest release the acknowledgement format is known for
	Supported  bool   // Version is at least MinVersion
	Contract   int    // Acknowledgement format version in use
	InJob      bool   // Whether we're currently inside a scheduled job
	Available  bool   // Whether scheduler is available for job submission
}

// Request is one sbatch invocation: sbatch [Args...] Script [PosArgs...]
type Request struct {
	Name    string   // Label used in messages, e.g. "trjconv_whole"
	Args    []string // sbatch options
	Script  string   // Batch script path
	PosArgs []string // Arguments for the batch script
	Dir     string   // Working directory for sbatch, empty for the current one
}

// Argv returns the full command line for bin.
func (r Request) Argv(bin string) []string {
	argv := make([]string, 0, 2+len(r.Args)+len(r.PosArgs))
	argv = append(argv, bin)
	argv = append(argv, r.Args...)
	argv = append(argv, r.Script)
	argv = append(argv, r.PosArgs...)
	return argv
}

// JobHandle identifies a queued job.
type JobHandle struct {
	ID      string // Job ID assigned by Slurm
	Cluster string // Cluster name, only reported by the parsable format
	Name    string // Request label
}

func (h JobHandle) String() string {
	if h.Cluster != "" {
		return h.ID + ";" + h.Cluster
	}
	return h.ID
}

// Scheduler defines the interface for job submitters
type Scheduler interface {
	// Submit runs one sbatch invocation and returns the queued job.
	Submit(req Request) (JobHandle, error)

	// GetInfo returns information about the scheduler
	GetInfo() *SchedulerInfo
}

// IsInsideJob checks if we're currently running inside a Slurm job.
func IsInsideJob() bool {
	_, ok := os.LookupEnv("SLURM_JOB_ID")
	return ok
}

// WithDependency returns req with its own dependency options replaced by
// "--dependency=<typ>:<id>[:<id>...]". With no ids the user's dependency
// is kept unchanged.
func WithDependency(req Request, typ string, ids ...string) Request {
	if len(ids) == 0 {
		return req
	}
	out := req
	out.Args = removeDependency(req.Args)
	out.Args = append(out.Args, "--dependency="+typ+":"+strings.Join(ids, ":"))
	return out
}

// Chain submits reqs in order. Every job after the first waits for the
// previous one to finish successfully (afterok); any dependency given in
// the request itself is dropped. A failed link stops the chain and is
// reported as a *ChainError carrying the jobs that were already queued.
func Chain(s Scheduler, reqs []Request) ([]JobHandle, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyChain
	}
	handles := make([]JobHandle, 0, len(reqs))
	for i, req := range reqs {
		if i > 0 {
			req = WithDependency(req, "afterok", handles[i-1].ID)
		}
		h, err := s.Submit(req)
		if err != nil {
			return handles, NewChainError(i, len(reqs), slices.Clone(handles), err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}
