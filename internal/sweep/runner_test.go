package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/metrics"
	"github.com/lumos-dse/lumos/internal/resultcache/mocks"
)

type funcJob struct {
	key string
	fn  func(ctx context.Context) (v1alpha1.SweepRecord, error)
}

func (j funcJob) Key() string { return j.key }

func (j funcJob) Run(ctx context.Context) (v1alpha1.SweepRecord, error) { return j.fn(ctx) }

func constJob(i int) funcJob {
	return funcJob{key: fmt.Sprintf("job-%d", i), fn: func(context.Context) (v1alpha1.SweepRecord, error) {
		return v1alpha1.SweepRecord{AreaPercent: i, Stats: v1alpha1.WorkloadStats{Mean: float64(i)}}, nil
	}}
}

func jobCount(r *metrics.Recorder, outcome string) float64 {
	families, err := r.Registry().Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, mf := range families {
		if mf.GetName() != "lumos_sweep_jobs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetLabel()[0].GetValue() == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

var _ = Describe("Runner", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns one result per job in submission order", func() {
		jobs := make([]Job, 25)
		for i := range jobs {
			jobs[i] = constJob(i)
		}
		rec := metrics.NewRecorder()
		r := &Runner{Workers: 4, QueueCapacity: 2, Metrics: rec}

		results, err := r.Run(ctx, jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(25))
		for i, res := range results {
			Expect(res.Index).To(Equal(i))
			Expect(res.Key).To(Equal(fmt.Sprintf("job-%d", i)))
			Expect(res.Err).NotTo(HaveOccurred())
			Expect(res.Record.AreaPercent).To(Equal(i))
		}
		Expect(jobCount(rec, metrics.OutcomeSucceeded)).To(Equal(25.0))
	})

	It("returns nothing for no jobs", func() {
		results, err := (&Runner{}).Run(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("keeps errors and panics local to their job", func() {
		boom := errors.New("boom")
		jobs := []Job{
			constJob(0),
			funcJob{key: "fails", fn: func(context.Context) (v1alpha1.SweepRecord, error) {
				return v1alpha1.SweepRecord{}, boom
			}},
			funcJob{key: "panics", fn: func(context.Context) (v1alpha1.SweepRecord, error) {
				panic("index out of range")
			}},
			constJob(3),
		}
		rec := metrics.NewRecorder()
		results, err := (&Runner{Workers: 2, Metrics: rec}).Run(ctx, jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[1].Err).To(MatchError(boom))
		Expect(results[1].Record.Failed()).To(BeTrue())
		Expect(results[2].Err).To(MatchError(ContainSubstring("panicked: index out of range")))
		Expect(results[2].Record.Error).To(ContainSubstring("panicked"))
		Expect(results[2].Record.Duration.Duration).To(BeNumerically(">=", 0))
		Expect(results[3].Record.AreaPercent).To(Equal(3))
		Expect(jobCount(rec, metrics.OutcomeFailed)).To(Equal(2.0))
		Expect(jobCount(rec, metrics.OutcomeSucceeded)).To(Equal(2.0))
	})

	It("never runs more jobs than workers at once", func() {
		var active, peak atomic.Int32
		jobs := make([]Job, 30)
		for i := range jobs {
			jobs[i] = funcJob{key: fmt.Sprint(i), fn: func(context.Context) (v1alpha1.SweepRecord, error) {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return v1alpha1.SweepRecord{}, nil
			}}
		}
		results, err := (&Runner{Workers: 3, QueueCapacity: 1}).Run(ctx, jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(30))
		Expect(peak.Load()).To(BeNumerically("<=", 3))
		Expect(peak.Load()).To(BeNumerically(">=", 1))
	})

	It("reports every job as cancelled when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		jobs := make([]Job, 20)
		for i := range jobs {
			jobs[i] = funcJob{key: fmt.Sprint(i), fn: func(ctx context.Context) (v1alpha1.SweepRecord, error) {
				cancel()
				<-ctx.Done()
				return v1alpha1.SweepRecord{}, ctx.Err()
			}}
		}
		rec := metrics.NewRecorder()
		results, err := (&Runner{Workers: 2, QueueCapacity: 1, Metrics: rec}).Run(cctx, jobs)
		Expect(err).To(MatchError(context.Canceled))
		Expect(results).To(HaveLen(20))
		for i, res := range results {
			Expect(res.Index).To(Equal(i))
			Expect(res.Cancelled()).To(BeTrue(), "job %d", i)
			Expect(res.Record.Failed()).To(BeTrue())
		}
		Expect(jobCount(rec, metrics.OutcomeCancelled)).To(Equal(20.0))
	})

	Context("with a result cache", func() {
		var (
			mockCtrl *gomock.Controller
			cache    *mocks.MockReadWriter
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			cache = mocks.NewMockReadWriter(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("skips cached jobs and stores new records", func() {
			var runs atomic.Int32
			counted := func(i int) funcJob {
				j := constJob(i)
				inner := j.fn
				j.fn = func(ctx context.Context) (v1alpha1.SweepRecord, error) {
					runs.Add(1)
					return inner(ctx)
				}
				return j
			}
			cached := v1alpha1.SweepRecord{AreaPercent: 40, Stats: v1alpha1.WorkloadStats{Mean: 9}}

			cache.EXPECT().Get(gomock.Any(), "job-0").Return(cached, true, nil)
			cache.EXPECT().Get(gomock.Any(), "job-1").Return(v1alpha1.SweepRecord{}, false, nil)
			cache.EXPECT().Put(gomock.Any(), "job-1", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, rec v1alpha1.SweepRecord) error {
					Expect(rec.AreaPercent).To(Equal(1))
					return nil
				})

			rec := metrics.NewRecorder()
			results, err := (&Runner{Workers: 1, Cache: cache, Metrics: rec}).Run(ctx, []Job{counted(0), counted(1)})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Cached).To(BeTrue())
			Expect(results[0].Record).To(Equal(cached))
			Expect(results[1].Cached).To(BeFalse())
			Expect(runs.Load()).To(Equal(int32(1)))
			Expect(jobCount(rec, metrics.OutcomeCached)).To(Equal(1.0))
		})

		It("reruns failed records and tolerates cache errors", func() {
			boom := errors.New("disk full")
			cache.EXPECT().Get(gomock.Any(), "job-0").Return(v1alpha1.SweepRecord{Error: "old failure"}, true, nil)
			cache.EXPECT().Put(gomock.Any(), "job-0", gomock.Any()).Return(boom)
			cache.EXPECT().Get(gomock.Any(), "job-1").Return(v1alpha1.SweepRecord{}, false, boom)
			cache.EXPECT().Put(gomock.Any(), "job-1", gomock.Any()).Return(nil)

			results, err := (&Runner{Workers: 1, Cache: cache}).Run(ctx, []Job{constJob(0), constJob(1)})
			Expect(err).NotTo(HaveOccurred())
			for _, res := range results {
				Expect(res.Err).NotTo(HaveOccurred())
				Expect(res.Cached).To(BeFalse())
			}
		})

		It("does not store failed records", func() {
			cache.EXPECT().Get(gomock.Any(), "fails").Return(v1alpha1.SweepRecord{}, false, nil)
			job := funcJob{key: "fails", fn: func(context.Context) (v1alpha1.SweepRecord, error) {
				return v1alpha1.SweepRecord{}, errors.New("no core fits")
			}}
			results, err := (&Runner{Cache: cache}).Run(ctx, []Job{job})
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Err).To(HaveOccurred())
		})
	})
})
