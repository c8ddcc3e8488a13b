package sweep

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/solver"
	"github.com/lumos-dse/lumos/pkg/tech"
)

func testWorkload() []*core.Application {
	a, err := core.NewApplication("app0", 0.99)
	Expect(err).NotTo(HaveOccurred())
	Expect(a.AddKernel("MMM", 0.4)).To(Succeed())
	Expect(a.AddKernel("FFT", 0.2)).To(Succeed())
	b, err := core.NewApplication("app1", 0.9)
	Expect(err).NotTo(HaveOccurred())
	Expect(b.AddKernel("BS", 0.5)).To(Succeed())
	return []*core.Application{a, b}
}

func testSpec() v1alpha1.DesignSweepSpec {
	return v1alpha1.DesignSweepSpec{
		Budget: v1alpha1.BudgetSpec{Preset: "large"},
		Core:   v1alpha1.CoreSpec{Variant: "io-cmos"},
		Allocation: v1alpha1.AllocationSpec{
			AreaPercent:      v1alpha1.PercentRange{Start: 0, Stop: 0},
			ASICSharePercent: v1alpha1.PercentRange{Start: 100, Stop: 100},
		},
		Workload: "workload.yaml",
	}
}

func runPlan(p *Plan) []Result {
	results, err := (&Runner{Workers: 2}).Run(context.Background(), p.Jobs("run-test"))
	Expect(err).NotTo(HaveOccurred())
	return results
}

var _ = Describe("Plan", func() {
	var (
		registry *core.KernelRegistry
		workload []*core.Application
	)

	BeforeEach(func() {
		registry = core.DefaultKernelRegistry()
		workload = testWorkload()
	})

	It("matches a plain system when no area goes to accelerators", func() {
		p, err := NewPlan(nil, testSpec(), registry, workload)
		Expect(err).NotTo(HaveOccurred())
		results := runPlan(p)
		Expect(results).To(HaveLen(1))
		Expect(results[0].Err).NotTo(HaveOccurred())
		rec := results[0].Record
		Expect(rec.Allocation).To(BeNil())
		Expect(rec.RunID).To(Equal("run-test"))
		Expect(rec.Stats.Apps).To(Equal(2))

		c, err := core.NewCoreBuilder().WithVariant(core.IOCMOS).Build()
		Expect(err).NotTo(HaveOccurred())
		sys, err := solver.NewSystemBuilder().WithBudget(core.SysLarge).WithCore(c).WithRegistry(registry).Build()
		Expect(err).NotTo(HaveOccurred())
		sum := 0.0
		for _, app := range workload {
			res, err := sys.Evaluate(app)
			Expect(err).NotTo(HaveOccurred())
			sum += res.Perf
			Expect(rec.CoreNum).To(Equal(res.CoreNum))
			Expect(rec.Vdd).To(Equal(res.Vdd))
		}
		Expect(rec.Stats.Mean).To(BeNumerically("~", sum/2, 1e-12))
	})

	It("splits accelerator area between ASICs and the general-purpose accelerator", func() {
		spec := testSpec()
		spec.GPAccelerator = "gpu"
		spec.Allocation.AreaPercent = v1alpha1.PercentRange{Start: 10, Stop: 20, Step: 10}
		spec.Allocation.ASICSharePercent = v1alpha1.PercentRange{Start: 0, Stop: 100, Step: 50}
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())

		results := runPlan(p)
		Expect(results).To(HaveLen(6))
		keys := map[string]bool{}
		for _, res := range results {
			Expect(res.Err).NotTo(HaveOccurred())
			keys[res.Key] = true
			rec := res.Record
			acc := float64(rec.AreaPercent) / 100
			asic := acc * float64(rec.ASICSharePercent) / 100
			Expect(rec.GPAreaRatio).To(BeNumerically("~", acc-asic, 1e-12))
			total := 0.0
			for _, share := range rec.Allocation {
				total += share
			}
			Expect(total).To(BeNumerically("~", asic, 1e-12))
			if rec.ASICSharePercent == 0 {
				Expect(rec.Allocation).To(BeNil())
			} else {
				Expect(rec.Allocation).To(HaveLen(3))
			}
			Expect(rec.Stats.Min).To(BeNumerically("<=", rec.Stats.Mean))
			Expect(rec.Stats.Max).To(BeNumerically(">=", rec.Stats.Mean))
			Expect(rec.Stats.HarmonicMean).To(BeNumerically("<=", rec.Stats.GeoMean+1e-12))
			Expect(rec.Stats.GeoMean).To(BeNumerically("<=", rec.Stats.Mean+1e-12))
		}
		Expect(keys).To(HaveLen(6))
		Expect(results[0].Record.AreaPercent).To(Equal(10))
		Expect(results[0].Record.ASICSharePercent).To(Equal(0))
		Expect(results[5].Record.AreaPercent).To(Equal(20))
		Expect(results[5].Record.ASICSharePercent).To(Equal(100))
	})

	It("gives area only to used kernels with coverage weighting", func() {
		spec := testSpec()
		spec.Allocation.Strategy = v1alpha1.StrategyCoverageWeighted
		spec.Allocation.AreaPercent = v1alpha1.PercentRange{Start: 12, Stop: 12}
		spec.Allocation.Kernels = []string{"MMM", "FFT"}
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		rec := runPlan(p)[0].Record
		Expect(rec.Allocation).To(HaveKeyWithValue("MMM", BeNumerically("~", 0.08, 1e-12)))
		Expect(rec.Allocation).To(HaveKeyWithValue("FFT", BeNumerically("~", 0.04, 1e-12)))
		Expect(rec.Allocation).NotTo(HaveKey("BS"))
	})

	It("builds an independent system for every call", func() {
		spec := testSpec()
		spec.Allocation.AreaPercent = v1alpha1.PercentRange{Start: 30, Stop: 30}
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		job := p.Jobs("")[0].(*HeteroJob)

		a, _, err := job.System(context.Background())
		Expect(err).NotTo(HaveOccurred())
		b, _, err := job.System(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(a).NotTo(BeIdenticalTo(b))
		Expect(a.ASICs()).To(HaveLen(3))

		Expect(a.RemoveASIC("asic-MMM")).To(Succeed())
		Expect(a.ASICs()).To(HaveLen(2))
		Expect(b.ASICs()).To(HaveLen(3))
		Expect(b.FreeArea()).To(BeNumerically("~", 0.7*200, 1e-9))
	})

	It("keys design points by everything that changes the record", func() {
		p1, err := NewPlan(nil, testSpec(), registry, workload)
		Expect(err).NotTo(HaveOccurred())
		p2, err := NewPlan(nil, testSpec(), registry, testWorkload())
		Expect(err).NotTo(HaveOccurred())
		Expect(p1.Jobs("a")[0].Key()).To(Equal(p2.Jobs("b")[0].Key()))

		spec := testSpec()
		spec.Mode = v1alpha1.ModeDark
		p3, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		Expect(p3.Jobs("a")[0].Key()).NotTo(Equal(p1.Jobs("a")[0].Key()))

		other := testWorkload()
		Expect(other[0].SetCoverage("MMM", 0.3)).To(Succeed())
		p4, err := NewPlan(nil, testSpec(), registry, other)
		Expect(err).NotTo(HaveOccurred())
		Expect(p4.Jobs("a")[0].Key()).NotTo(Equal(p1.Jobs("a")[0].Key()))
		Expect(p1.Jobs("a")[0].Key()).To(ContainSubstring("core=io-cmos"))
	})

	It("runs dark-silicon designs at the voltage ceiling", func() {
		spec := testSpec()
		spec.Mode = v1alpha1.ModeDark
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		rec := runPlan(p)[0].Record
		Expect(rec.Vdd).To(Equal(p.core.Ceiling()))
	})

	It("applies explicit budget fields over the preset", func() {
		spec := testSpec()
		spec.Budget.Area = ptr.To(100.0)
		spec.Budget.Bandwidth = map[string]float64{"45nm": 90, "7": 500}
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.budget.Area).To(Equal(100.0))
		Expect(p.budget.Power).To(Equal(120.0))
		Expect(p.budget.Bandwidth).To(HaveKeyWithValue(tech.Node(45), 90.0))
		Expect(p.budget.Bandwidth).To(HaveKeyWithValue(tech.Node(7), 500.0))
		Expect(p.budget.Bandwidth).To(HaveKeyWithValue(tech.Node(22), 234.0))
		Expect(core.SysLarge.Bandwidth).To(HaveKeyWithValue(tech.Node(45), 180.0))
	})

	It("puts the serial core on the throughput core's node by default", func() {
		spec := testSpec()
		spec.Core.Node = 22
		spec.SerialCore = &v1alpha1.CoreSpec{Variant: "o3-cmos"}
		p, err := NewPlan(nil, spec, registry, workload)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.serial.Node()).To(Equal(tech.Node(22)))
		Expect(p.Jobs("")[0].Key()).To(ContainSubstring("serial=o3-cmos"))
		Expect(runPlan(p)[0].Err).NotTo(HaveOccurred())
	})

	DescribeTable("rejects unresolvable specs",
		func(mutate func(*v1alpha1.DesignSweepSpec), want string) {
			spec := testSpec()
			mutate(&spec)
			_, err := NewPlan(nil, spec, registry, workload)
			Expect(err).To(HaveOccurred())
			Expect(strings.ToLower(err.Error())).To(ContainSubstring(want))
		},
		Entry("unknown variant", func(s *v1alpha1.DesignSweepSpec) { s.Core.Variant = "pentium" }, "unknown core variant"),
		Entry("unknown preset", func(s *v1alpha1.DesignSweepSpec) { s.Budget.Preset = "huge" }, "unknown predefined budget"),
		Entry("bad bandwidth key", func(s *v1alpha1.DesignSweepSpec) {
			s.Budget.Bandwidth = map[string]float64{"fast": 1}
		}, "not a node"),
		Entry("unknown kernel", func(s *v1alpha1.DesignSweepSpec) { s.Allocation.Kernels = []string{"DCT"} }, "unknown kernel"),
		Entry("duplicate kernel", func(s *v1alpha1.DesignSweepSpec) { s.Allocation.Kernels = []string{"MMM", "MMM"} }, "listed twice"),
		Entry("uncharacterized node", func(s *v1alpha1.DesignSweepSpec) { s.Core.Node = 3 }, "no characterization data"),
		Entry("invalid spec", func(s *v1alpha1.DesignSweepSpec) { s.Workload = "" }, "spec.workload"),
	)

	It("needs a workload", func() {
		_, err := NewPlan(nil, testSpec(), registry, nil)
		Expect(err).To(MatchError(core.ErrIncompleteBuilder))
	})
})
