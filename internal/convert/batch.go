// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/wp2tt/pkg/types"
)

// BatchOptions controls ConvertBatch.
type BatchOptions struct {
	// Workers bounds concurrent conversions; values below 1 mean 1.
	Workers int

	// Force converts even when the output is newer than every input.
	Force bool
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Cached    int
	Skipped   int
	Failed    int
}

// Total returns the total number of jobs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Cached + r.Skipped + r.Failed
}

// HasFailures reports whether any job failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// jobOutcome is the status line and status of one job.
type jobOutcome struct {
	status types.ConversionStatus
	line   string
	done   bool
}

// ConvertBatch runs jobs through c with bounded concurrency. Per-job status
// lines are written to w in job order, as soon as every earlier job has
// finished, followed by a summary.
func ConvertBatch(ctx context.Context, c Converter, jobs []Job, opts BatchOptions, w io.Writer) BatchResult {
	workers := max(opts.Workers, 1)

	var (
		mu       sync.Mutex
		outcomes = make([]jobOutcome, len(jobs))
		next     int
	)
	finish := func(i int, o jobOutcome) {
		mu.Lock()
		defer mu.Unlock()
		o.done = true
		outcomes[i] = o
		for next < len(outcomes) && outcomes[next].done {
			fmt.Fprint(w, outcomes[next].line)
			next++
		}
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			finish(i, runJob(ctx, c, job, opts.Force))
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for _, o := range outcomes {
		switch o.status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionCached:
			result.Cached++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d cached, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Cached, result.Skipped, result.Failed, result.Total())
	return result
}

func runJob(ctx context.Context, c Converter, job Job, force bool) jobOutcome {
	if job.Output == "" && len(job.Inputs) > 0 {
		job.Output = DefaultOutput(job.Inputs[0])
	}
	name := filepath.Base(job.Output)

	if err := ctx.Err(); err != nil {
		return jobOutcome{status: types.ConversionFailed, line: fmt.Sprintf("failed:    %s (%v)\n", name, err)}
	}
	if !force && upToDate(job) {
		return jobOutcome{status: types.ConversionNone, line: fmt.Sprintf("skipped:   %s (up to date)\n", name)}
	}

	res, err := c.Convert(ctx, job)
	switch {
	case err != nil:
		return jobOutcome{status: types.ConversionFailed, line: fmt.Sprintf("failed:    %s (%v)\n", name, err)}
	case res.Cached:
		return jobOutcome{status: types.ConversionCached, line: fmt.Sprintf("cached:    %s\n", name)}
	}
	return jobOutcome{status: types.ConversionDone, line: fmt.Sprintf("converted: %s\n", name)}
}

// upToDate reports whether the job's output exists and is newer than every
// input.
func upToDate(job Job) bool {
	out, err := os.Stat(job.Output)
	if err != nil {
		return false
	}
	for _, in := range job.Inputs {
		info, err := os.Stat(in)
		if err != nil || !out.ModTime().After(info.ModTime()) {
			return false
		}
	}
	return true
}

// BatchJobs builds one job per input. With outDir set, outputs are written
// there under the input's base name; otherwise next to the input.
func BatchJobs(inputs []string, outDir string) []Job {
	jobs := make([]Job, len(inputs))
	for i, in := range inputs {
		out := DefaultOutput(in)
		if outDir != "" {
			out = filepath.Join(outDir, filepath.Base(out))
		}
		jobs[i] = Job{Inputs: []string{in}, Output: out}
	}
	return jobs
}
