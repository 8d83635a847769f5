package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/guides/internal/diag"
)

// Orchestrator runs queued builds of one source tree in the background,
// one at a time, and keeps their results for the preview server.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	builder *Builder
	source  fs.FS
	out     string
	timeout time.Duration
	stats   *BuildStats
	log     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// OrchestratorConfig holds the orchestrator settings.
type OrchestratorConfig struct {
	// OutputDir receives the rendered files; empty keeps results in memory
	// only.
	OutputDir    string
	MaxQueueSize int
	BuildTimeout time.Duration
	BuildTTL     time.Duration
}

// NewOrchestrator creates the pipeline. Call Start to run it.
func NewOrchestrator(cfg OrchestratorConfig, b *Builder, source fs.FS, log *slog.Logger) *Orchestrator {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	return &Orchestrator{
		jobs:    NewJobStore(cfg.BuildTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		builder: b,
		source:  source,
		out:     cfg.OutputDir,
		timeout: cfg.BuildTimeout,
		stats:   NewBuildStats(time.Hour),
		log:     log,
	}
}

// Start launches the build worker and the job cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case job, ok := <-o.queue:
				if !ok {
					return
				}
				o.Process(workerCtx, job)
			}
		}
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new build.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("build queue is full (%d)", cap(o.queue))
	}
}

// Process runs one build synchronously.
func (o *Orchestrator) Process(ctx context.Context, job *Job) {
	log := o.log.With("build_id", job.ID, "trigger", job.Trigger)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	job.SetStatus(StatusRunning, "building")
	start := time.Now()
	res, err := o.builder.Build(ctx, o.source)
	if err != nil {
		o.stats.Record(time.Since(start), 0, true)
		log.Error("build failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "building")
		return
	}
	job.SetResult(res)

	if o.out != "" {
		job.SetStatus(StatusWriting, "writing")
		if err := WriteOutputs(o.out, res); err != nil {
			o.stats.Record(time.Since(start), len(res.Documents), true)
			log.Error("write failed", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "writing")
			return
		}
	}

	o.stats.Record(time.Since(start), len(res.Documents), false)
	o.jobs.SetLatest(job)
	job.SetStatus(StatusCompleted, "done")
	log.Info("build finished",
		"documents", len(res.Documents),
		"warnings", res.Diagnostics.Count(diag.Warning),
		"errors", res.Diagnostics.Count(diag.Error),
	)
}

// GetJob returns a build by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Latest returns the most recent successful build, or nil.
func (o *Orchestrator) Latest() *Job {
	return o.jobs.Latest()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the build latency aggregate.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
