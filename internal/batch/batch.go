// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch converts many source documents concurrently with a bounded
// worker pool. Jobs are isolated: a failing or panicking job is recorded
// and the rest of the batch continues.
package batch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/datasheet-engine/internal/convert"
	"github.com/pdiddy/datasheet-engine/internal/metrics"
	"github.com/pdiddy/datasheet-engine/internal/progress"
	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// Source resolves a job's source identity to document bytes.
type Source interface {
	Read(ctx context.Context, id string) ([]byte, error)
}

// Sink stores rendered documents. Write must never replace an existing
// document; it reports one with an error matching fs.ErrExist.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// Converter turns one source document into a rendered document.
type Converter interface {
	Convert(data []byte, source string, ov types.Overrides) (convert.Output, error)
}

// Deps are the collaborators of an Orchestrator. Progress, Metrics and Log
// are optional.
type Deps struct {
	Source   Source
	Sink     Sink
	Progress progress.Store
	Metrics  *metrics.Batch
	Log      io.Writer
}

// Orchestrator runs batches. It may run several batches concurrently; the
// naming registry is shared between them.
type Orchestrator struct {
	cfg     types.BatchConfig
	conv    Converter
	deps    Deps
	names   *registry
	logMu   sync.Mutex
	workers int
}

// New returns an orchestrator converting with conv.
func New(cfg types.BatchConfig, conv Converter, deps Deps) *Orchestrator {
	if deps.Progress == nil {
		deps.Progress = progress.NewMemoryStore()
	}
	if deps.Log == nil {
		deps.Log = io.Discard
	}
	return &Orchestrator{
		cfg:     cfg,
		conv:    conv,
		deps:    deps,
		names:   newRegistry(),
		workers: cfg.EffectiveWorkers(),
	}
}

// outcome is the result slot of one job.
type outcome struct {
	started bool
	success *types.JobSuccess
	failure *types.JobFailure
	notice  *types.Notice
}

// Run processes jobs and returns the report. Cancelling ctx stops workers
// from taking new jobs; jobs already running finish and jobs never
// started are reported as skipped. The report lists jobs in input order.
func (o *Orchestrator) Run(ctx context.Context, jobs []types.Job) types.BatchReport {
	runID := uuid.NewString()
	jobs = append([]types.Job(nil), jobs...)
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = uuid.NewString()
		}
		o.publish(ctx, runID, jobs[i], types.JobQueued, "", "")
	}

	results := make([]outcome, len(jobs))
	var (
		mu   sync.Mutex
		next int
		wg   sync.WaitGroup
	)
	take := func() (int, bool) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil || next >= len(jobs) {
			return 0, false
		}
		i := next
		next++
		results[i].started = true
		return i, true
	}

	workers := min(o.workers, len(jobs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i, ok := take()
				if !ok {
					return
				}
				// A started job runs to completion even if the batch is cancelled.
				results[i] = o.process(context.WithoutCancel(ctx), runID, jobs[i])
			}
		}()
	}
	wg.Wait()

	report := types.BatchReport{
		RunID:     runID,
		Succeeded: []types.JobSuccess{},
		Failed:    []types.JobFailure{},
		Skipped:   []string{},
		Notices:   []types.Notice{},
	}
	for i, r := range results {
		switch {
		case !r.started:
			report.Skipped = append(report.Skipped, jobs[i].ID)
			o.publish(ctx, runID, jobs[i], types.JobSkipped, "", "")
			o.deps.Metrics.ObserveJob(types.JobSkipped, 0)
			o.logf("skipped: %s\n", jobs[i].Source)
		case r.failure != nil:
			report.Failed = append(report.Failed, *r.failure)
		case r.success != nil:
			report.Succeeded = append(report.Succeeded, *r.success)
		}
		if r.notice != nil {
			report.Notices = append(report.Notices, *r.notice)
		}
	}

	if o.cfg.MetricsFile != "" {
		if err := o.deps.Metrics.WriteTextfile(o.cfg.MetricsFile); err != nil {
			o.logf("warning: metrics: %v\n", err)
		}
	}
	o.logf("\nBatch summary: %d completed, %d failed, %d skipped (total: %d)\n",
		len(report.Succeeded), len(report.Failed), len(report.Skipped), report.Total())
	return report
}

// process runs one job. It never panics.
func (o *Orchestrator) process(ctx context.Context, runID string, job types.Job) (res outcome) {
	res.started = true
	start := time.Now()
	o.publish(ctx, runID, job, types.JobProcessing, "", "")
	o.logf("processing: %s\n", job.Source)

	defer func() {
		if r := recover(); r != nil {
			res = o.fail(ctx, runID, job, start, types.KindInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	data, err := o.deps.Source.Read(ctx, job.Source)
	if err != nil {
		return o.fail(ctx, runID, job, start, types.KindOf(err), err)
	}
	out, err := o.conv.Convert(data, job.Source, job.Overrides)
	if err != nil {
		return o.fail(ctx, runID, job, start, types.KindOf(err), err)
	}
	for _, w := range out.Warnings {
		o.logf("warning: %s: %s\n", job.Source, w)
	}
	if len(out.Unresolved) > 0 {
		o.logf("warning: %s: unresolved placeholders %v\n", job.Source, out.Unresolved)
	}

	want := out.Record.Name.FileName()
	name, err := o.names.store(ctx, o.deps.Sink, want, out.Document)
	if err != nil {
		return o.fail(ctx, runID, job, start, types.KindOf(err), err)
	}
	if name != want {
		res.notice = &types.Notice{
			Kind:    types.KindNamingCollision,
			JobID:   job.ID,
			Message: fmt.Sprintf("%s already taken, wrote %s", want, name),
		}
		o.logf("renamed: %s -> %s (%s taken)\n", job.Source, name, want)
	}

	o.deps.Metrics.ObserveJob(types.JobCompleted, time.Since(start))
	o.deps.Metrics.ObserveWarnings(out.Warnings)
	o.publish(ctx, runID, job, types.JobCompleted, name, "")
	o.logf("completed: %s -> %s\n", job.Source, name)
	res.success = &types.JobSuccess{
		JobID:    job.ID,
		Source:   job.Source,
		Output:   name,
		Warnings: out.Warnings,
	}
	return res
}

func (o *Orchestrator) fail(ctx context.Context, runID string, job types.Job, start time.Time, kind types.ErrorKind, err error) outcome {
	o.deps.Metrics.ObserveJob(types.JobFailed, time.Since(start))
	o.publish(ctx, runID, job, types.JobFailed, "", err.Error())
	o.logf("failed:  %s (%s: %v)\n", job.Source, kind, err)
	return outcome{
		started: true,
		failure: &types.JobFailure{
			JobID:   job.ID,
			Source:  job.Source,
			Kind:    kind,
			Message: err.Error(),
			Err:     err,
		},
	}
}

// publish records a transition. A store error is logged and does not
// affect the job.
func (o *Orchestrator) publish(ctx context.Context, runID string, job types.Job, status types.JobStatus, output, msg string) {
	ev := types.JobEvent{
		JobID:  job.ID,
		Source: job.Source,
		Status: status,
		Output: output,
		Error:  msg,
		Time:   time.Now().UTC(),
	}
	if err := o.deps.Progress.Publish(context.WithoutCancel(ctx), runID, ev); err != nil {
		o.logf("warning: progress: %v\n", err)
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	o.logMu.Lock()
	defer o.logMu.Unlock()
	fmt.Fprintf(o.deps.Log, format, args...)
}
