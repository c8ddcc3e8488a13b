package solver

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumos-dse/lumos/pkg/core"
)

// forkJoin is 0 -> {1, 2} -> 3.
func forkJoin() *core.DAGApplication {
	d, err := core.NewDAGApplication("fork-join")
	Expect(err).NotTo(HaveOccurred())
	for _, t := range []core.Task{
		{Kernel: "MMM", Length: 10, Parallel: 0.9},
		{Kernel: "BS", Length: 20, Parallel: 1},
		{Kernel: "FFT", Length: 15, Parallel: 0.5},
		{Kernel: "MMM", Length: 10},
	} {
		_, err := d.AddTask(t)
		Expect(err).NotTo(HaveOccurred())
	}
	for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		Expect(d.AddDependency(e[0], e[1])).To(Succeed())
	}
	return d
}

var _ = Describe("DAG applications", func() {
	var (
		sys *System
		app *core.DAGApplication
	)

	BeforeEach(func() {
		sys = newSystem(budget(200, 120))
		app = forkJoin()
	})

	Context("run serially", func() {
		It("should add up task run times on the cores", func() {
			res, err := sys.EvaluateDAGSerial(app)
			Expect(err).NotTo(HaveOccurred())

			dim, err := sys.OptimalDim()
			Expect(err).NotTo(HaveOccurred())
			single, err := sys.Core().Perf(dim.Vdd)
			Expect(err).NotTo(HaveOccurred())
			single /= core.ReferencePerf
			serial, err := sys.SerialCore().Perf(sys.SerialCore().Ceiling())
			Expect(err).NotTo(HaveOccurred())
			serial /= core.ReferencePerf

			Expect(res.TaskRuntime[1]).To(BeNumerically("~", 20/dim.Perf, 1e-12))
			Expect(res.TaskRuntime[2]).To(BeNumerically("~", 7.5/single+7.5/dim.Perf, 1e-12))
			Expect(res.TaskRuntime[3]).To(BeNumerically("~", 10/serial, 1e-12))
			Expect(res.Runtime).To(BeNumerically("~",
				res.TaskRuntime[0]+res.TaskRuntime[1]+res.TaskRuntime[2]+res.TaskRuntime[3], 1e-12))
			Expect(res.Baseline).To(Equal(55.0))
			Expect(res.Speedup).To(BeNumerically("~", 55/res.Runtime, 1e-12))
			Expect(res.Targets).To(HaveEach(TargetCores))
		})

		It("should run tasks with an ASIC on it", func() {
			plain, err := sys.EvaluateDAGSerial(app)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.SetASIC("MMM", "mmm0", 0.05)).To(Succeed())
			res, err := sys.EvaluateDAGSerial(app)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Targets[0]).To(Equal(TargetASIC))
			Expect(res.Targets[3]).To(Equal(TargetASIC))
			Expect(res.Targets[1]).To(Equal(TargetCores))
			perf := sys.asicFor("MMM").Perf(&sys.budget.Power, nil) / core.ReferencePerf
			Expect(res.TaskRuntime[0]).To(BeNumerically("~", 10/perf, 1e-12))
			Expect(res.Speedup).To(BeNumerically(">", plain.Speedup))
		})
	})

	Context("run in parallel", func() {
		It("should overlap accelerated tasks of a level", func() {
			for _, k := range []string{"MMM", "BS", "FFT"} {
				Expect(sys.SetASIC(k, "asic-"+k, 0.05)).To(Succeed())
			}
			serial, err := sys.EvaluateDAGSerial(app)
			Expect(err).NotTo(HaveOccurred())
			res, err := sys.EvaluateDAGParallel(app)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Targets).To(HaveEach(TargetASIC))
			Expect(res.Warps).To(Equal(3))
			for i, rt := range res.TaskRuntime {
				Expect(rt).To(BeNumerically("~", serial.TaskRuntime[i], 1e-9), "task %d", i)
			}
			rt := res.TaskRuntime
			Expect(res.Runtime).To(BeNumerically("~", rt[0]+max(rt[1], rt[2])+rt[3], 1e-9))
			Expect(res.Speedup).To(BeNumerically(">", serial.Speedup))
		})

		It("should give the longest task of a level the full budget", func() {
			serial, err := sys.EvaluateDAGSerial(app)
			Expect(err).NotTo(HaveOccurred())
			res, err := sys.EvaluateDAGParallel(app)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.TaskRuntime[0]).To(BeNumerically("~", serial.TaskRuntime[0], 1e-12))
			Expect(res.TaskRuntime[1]).To(BeNumerically("~", serial.TaskRuntime[1], 1e-12))
			Expect(res.Warps).To(BeNumerically(">=", app.Depth()))
		})

		It("should start a new warp once the budget is spent", func() {
			c := ioCore()
			vminPower, err := c.Power(c.Vmin())
			Expect(err).NotTo(HaveOccurred())
			sys = newSystem(budget(200, 1.5*vminPower))

			pair, err := core.NewDAGApplication("pair")
			Expect(err).NotTo(HaveOccurred())
			_, err = pair.AddTask(core.Task{Kernel: "FFT", Length: 10, Parallel: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = pair.AddTask(core.Task{Kernel: "BS", Length: 5, Parallel: 1})
			Expect(err).NotTo(HaveOccurred())

			res, err := sys.EvaluateDAGParallel(pair)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Warps).To(Equal(2))
			dim, err := sys.OptimalDim()
			Expect(err).NotTo(HaveOccurred())
			Expect(dim.CoreNum).To(Equal(1))
			Expect(res.Runtime).To(BeNumerically("~", 15/dim.Perf, 1e-9))
		})
	})

	It("should reject tasks of unknown kernels", func() {
		d, err := core.NewDAGApplication("unknown")
		Expect(err).NotTo(HaveOccurred())
		_, err = d.AddTask(core.Task{Kernel: "SPMV", Length: 1})
		Expect(err).NotTo(HaveOccurred())
		_, err = sys.EvaluateDAGSerial(d)
		Expect(errors.Is(err, core.ErrUnknownKernel)).To(BeTrue())
		_, err = sys.EvaluateDAGParallel(d)
		Expect(errors.Is(err, core.ErrUnknownKernel)).To(BeTrue())
	})

	It("should reject an empty application", func() {
		d, err := core.NewDAGApplication("empty")
		Expect(err).NotTo(HaveOccurred())
		_, err = sys.EvaluateDAGParallel(d)
		Expect(errors.Is(err, core.ErrInvalidParameter)).To(BeTrue())
	})
})
