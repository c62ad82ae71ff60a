package slurm

import "errors"

// Submission errors.
var (
	// ErrNoJobID is returned when sbatch output does not contain a
	// parsable job ID. Slurm prints "Submitted batch job <id>" on
	// success; anything else means the submission state is unknown.
	ErrNoJobID = errors.New("could not parse job ID from sbatch output")

	// ErrNoScripts is returned when a submission sequence is started
	// with no batch scripts.
	ErrNoScripts = errors.New("no batch scripts to submit")
)
