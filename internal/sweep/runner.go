package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/logging"
	"github.com/lumos-dse/lumos/internal/metrics"
	"github.com/lumos-dse/lumos/internal/resultcache"
)

// ErrCancelled is the error of a job that was never run.
var ErrCancelled = errors.New("design point not evaluated: sweep cancelled")

// Job is one unit of work.
type Job interface {
	// Key identifies the job in the result cache. Jobs with equal keys
	// produce equal records.
	Key() string
	// Run evaluates the job.
	Run(ctx context.Context) (v1alpha1.SweepRecord, error)
}

// Result is the outcome of one job.
type Result struct {
	// Index is the position of the job in the submitted slice.
	Index  int
	Key    string
	Record v1alpha1.SweepRecord
	// Err is set when the job failed, panicked or was cancelled.
	Err    error
	Cached bool
}

// Cancelled reports whether the job was skipped because the sweep was cancelled.
func (r Result) Cancelled() bool { return errors.Is(r.Err, ErrCancelled) }

type task struct {
	index int
	job   Job
}

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	// Workers is the number of concurrent jobs. Defaults to GOMAXPROCS.
	Workers int
	// QueueCapacity bounds the task and result channels. Defaults to 2*Workers.
	QueueCapacity int
	// Cache, when set, is consulted before a job runs and updated after it succeeds.
	Cache resultcache.ReadWriter
	// Metrics, when set, records every result.
	Metrics *metrics.Recorder
}

func (r *Runner) workers(jobs int) int {
	n := r.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(min(n, jobs), 1)
}

func (r *Runner) capacity(workers int) int {
	if r.QueueCapacity > 0 {
		return r.QueueCapacity
	}
	return 2 * workers
}

// Run executes every job and returns their results in submission order.
// It returns the context error if the sweep was cancelled; results are
// complete in that case too, with unprocessed jobs failed by ErrCancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	logger := ctrl.LoggerFrom(ctx)
	if len(jobs) == 0 {
		return nil, nil
	}
	workers := r.workers(len(jobs))
	capacity := r.capacity(workers)
	tasks := make(chan task, capacity)
	results := make(chan Result, capacity)

	logger.V(logging.DEBUG).Info("Starting sweep", "jobs", len(jobs), "workers", workers, "queueCapacity", capacity)

	var g errgroup.Group
	g.Go(func() error {
		defer close(tasks)
		for i, job := range jobs {
			select {
			case tasks <- task{index: i, job: job}:
			case <-ctx.Done():
				for j := i; j < len(jobs); j++ {
					results <- r.cancelled(j, jobs[j])
				}
				return nil
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			for t := range tasks {
				if ctx.Err() != nil {
					results <- r.cancelled(t.index, t.job)
					continue
				}
				results <- r.execute(ctx, t)
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	out := make([]Result, len(jobs))
	seen := make([]bool, len(jobs))
	received := 0
	for res := range results {
		out[res.Index] = res
		seen[res.Index] = true
		received++
	}
	if received != len(jobs) {
		// unreachable unless a worker exits early
		for i, ok := range seen {
			if !ok {
				out[i] = r.cancelled(i, jobs[i])
			}
		}
	}
	logger.V(logging.DEBUG).Info("Sweep finished", "jobs", len(jobs))
	return out, ctx.Err()
}

func (r *Runner) cancelled(index int, job Job) Result {
	res := Result{Index: index, Key: job.Key(), Err: ErrCancelled}
	res.Record.Error = ErrCancelled.Error()
	r.observe(res, 0)
	return res
}

func (r *Runner) execute(ctx context.Context, t task) (res Result) {
	key := t.job.Key()
	logger := ctrl.LoggerFrom(ctx).WithValues("job", key)
	res = Result{Index: t.index, Key: key}

	if r.Cache != nil {
		rec, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger.Error(err, "Failed to read result cache")
		} else if ok && !rec.Failed() {
			logger.V(logging.TRACE).Info("Using cached record")
			res.Record = rec
			res.Cached = true
			r.observe(res, 0)
			return res
		}
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("job %s panicked: %v", key, p)
			res.Record = v1alpha1.SweepRecord{}
		}
		elapsed := time.Since(start)
		res.Record.Duration = metav1.Duration{Duration: elapsed}
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			res.Err = fmt.Errorf("%w: %w", ErrCancelled, res.Err)
		}
		if res.Err != nil {
			res.Record.Error = res.Err.Error()
			logger.V(logging.DEBUG).Info("Design point failed", "error", res.Err.Error())
		} else if r.Cache != nil {
			if err := r.Cache.Put(ctx, key, res.Record); err != nil {
				logger.Error(err, "Failed to store record in result cache")
			}
		}
		r.observe(res, elapsed)
	}()

	res.Record, res.Err = t.job.Run(ctx)
	return res
}

func (r *Runner) observe(res Result, elapsed time.Duration) {
	if r.Metrics == nil {
		return
	}
	outcome := metrics.OutcomeSucceeded
	switch {
	case res.Cancelled():
		outcome = metrics.OutcomeCancelled
	case res.Err != nil:
		outcome = metrics.OutcomeFailed
	case res.Cached:
		outcome = metrics.OutcomeCached
	}
	r.Metrics.ObserveJob(outcome, elapsed, res.Record.Degraded)
}
