package core

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/lumos-dse/lumos/pkg/tech"
)

var _ = Describe("Accelerator", func() {
	var (
		registry *KernelRegistry
		bs       *Kernel
	)

	BeforeEach(func() {
		registry = DefaultKernelRegistry()
		var err error
		bs, err = registry.Get("BS")
		Expect(err).NotTo(HaveOccurred())
	})

	build := func(area float64) *Accelerator {
		acc, err := NewAcceleratorBuilder().WithKernel(bs).WithNode(45).WithArea(area).Build()
		Expect(err).NotTo(HaveOccurred())
		return acc
	}

	It("should scale linearly with area when unconstrained", func() {
		acc := build(10)
		Expect(acc.ID()).To(Equal("BS"))
		Expect(acc.Perf(nil, nil)).To(BeNumerically("~", 43.5*(10/24.125)*482, 1e-9))
		Expect(acc.EffectiveArea(nil, nil)).To(Equal(10.0))
	})

	It("should be limited by the power budget", func() {
		acc := build(10)
		limited := 10.0 / (20 * 4.75) * 24.125
		Expect(acc.EffectiveArea(ptr.To(10.0), nil)).To(BeNumerically("~", limited, 1e-9))
		Expect(acc.Perf(ptr.To(10.0), nil)).To(BeNumerically("~", 43.5*(limited/24.125)*482, 1e-9))
	})

	It("should be limited by the bandwidth budget", func() {
		acc := build(10)
		limited := 10.0 / 66.249 * 24.125
		Expect(acc.EffectiveArea(ptr.To(1000.0), ptr.To(10.0))).To(BeNumerically("~", limited, 1e-9))
	})

	It("should scale the bandwidth cost with frequency at other nodes", func() {
		acc, err := NewAcceleratorBuilder().WithKernel(bs).WithNode(22).WithArea(10).Build()
		Expect(err).NotTo(HaveOccurred())
		ratio, err := tech.RatioOf(tech.CMOSHP, 45, 22)
		Expect(err).NotTo(HaveOccurred())
		limited := 10.0 / (66.249 * ratio.Freq) * (24.125 * ratio.Area)
		Expect(acc.EffectiveArea(ptr.To(1000.0), ptr.To(10.0))).To(BeNumerically("~", limited, 1e-9))
		Expect(limited).To(BeNumerically("~", 10.0/(66.249*1.2)*6.03125, 1e-9))
	})

	It("should draw no more power than the budget it is given", func() {
		acc := build(10)
		Expect(acc.EffectivePower(ptr.To(10.0), nil)).To(BeNumerically("~", 10, 1e-9))
		Expect(acc.EffectivePower(ptr.To(1000.0), nil)).To(BeNumerically("~", acc.Power(), 1e-9))
		Expect(acc.EffectivePower(nil, nil)).To(BeNumerically("~", acc.Power(), 1e-9))
	})

	It("should use the smallest of the three areas", func() {
		acc := build(1)
		Expect(acc.EffectiveArea(ptr.To(1000.0), ptr.To(1000.0))).To(Equal(1.0))
	})

	It("should re-derive performance after an area update", func() {
		acc := build(10)
		before := acc.Perf(nil, nil)
		Expect(acc.SetArea(20)).To(Succeed())
		Expect(acc.Perf(nil, nil)).To(BeNumerically("~", 2*before, 1e-9))
		Expect(acc.SetArea(-1)).To(MatchError(ErrInvalidParameter))
		Expect(acc.Area()).To(Equal(20.0))
	})

	It("should report power of the whole area", func() {
		acc := build(24.125)
		Expect(acc.Power()).To(BeNumerically("~", 20*4.75, 1e-9))
		Expect(acc.StaticPower()).To(BeZero())
	})

	It("should require a kernel and node", func() {
		_, err := NewAcceleratorBuilder().WithNode(45).Build()
		Expect(errors.Is(err, ErrIncompleteBuilder)).To(BeTrue())
		_, err = NewAcceleratorBuilder().WithKernel(bs).Build()
		Expect(errors.Is(err, ErrIncompleteBuilder)).To(BeTrue())
	})

	It("should fail for technologies without an accelerator baseline", func() {
		_, err := NewAcceleratorBuilder().WithKernel(bs).WithTech(tech.FinFETHP).WithNode(20).WithArea(5).Build()
		var dataErr *tech.ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
	})

	It("should run a TFET accelerator at its own node", func() {
		acc, err := NewAcceleratorBuilder().WithKernel(bs).WithTech(tech.TFETHomo30).WithNode(22).WithArea(24.125 / 4).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(acc.Perf(nil, nil)).To(BeNumerically("~", 43.5*1.21/1.65*482, 1e-9))
	})

	Context("general purpose", func() {
		It("should run any characterized kernel", func() {
			gp, err := NewGPAccelerator(nil, FPGA, tech.CMOSHP, 45, 24.125)
			Expect(err).NotTo(HaveOccurred())
			perf, err := gp.Perf(bs, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(perf).To(BeNumerically("~", 43.5*5.68, 1e-9))
			Expect(gp.Supports(bs)).To(BeTrue())

			// one baseline element of FPGA running BS draws 20 * 0.26 W
			power, err := gp.EffectivePower(bs, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(power).To(BeNumerically("~", 20*0.26, 1e-9))
			power, err = gp.EffectivePower(bs, ptr.To(2.0), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(power).To(BeNumerically("~", 2, 1e-9))
		})

		It("should reject fixed-function kinds", func() {
			_, err := NewGPAccelerator(nil, ASIC, tech.CMOSHP, 45, 10)
			Expect(err).To(MatchError(ErrInvalidParameter))
		})

		It("should fail for kernels without parameters", func() {
			k, err := NewKernel("SPMV", map[AcceleratorKind]KernelParams{ASIC: {Miu: 1}})
			Expect(err).NotTo(HaveOccurred())
			gp, err := NewGPAccelerator(nil, GPU, tech.CMOSHP, 45, 10)
			Expect(err).NotTo(HaveOccurred())
			_, err = gp.Perf(k, nil, nil)
			Expect(err).To(MatchError(ErrNoKernelParams))
		})
	})
})
