// Package slurm submits batch jobs to the Slurm workload manager.
// It wraps the sbatch command behind a small Runner interface so the
// submission sequencing can be tested without a cluster.
package slurm
