package solver

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumos-dse/lumos/pkg/core"
)

func ioCore() *core.Core {
	c, err := core.NewCoreBuilder().WithVariant(core.IOCMOS).Build()
	Expect(err).NotTo(HaveOccurred())
	return c
}

func budget(area, power float64) core.Budget {
	b, err := core.NewBudget(area, power, nil)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func newSystem(b core.Budget) *System {
	sys, err := NewSystemBuilder().
		WithBudget(b).
		WithCore(ioCore()).
		WithRegistry(core.DefaultKernelRegistry()).
		Build()
	Expect(err).NotTo(HaveOccurred())
	return sys
}

var _ = Describe("SystemBuilder", func() {
	It("should require a budget, core and registry", func() {
		_, err := NewSystemBuilder().WithCore(ioCore()).WithRegistry(core.DefaultKernelRegistry()).Build()
		Expect(err).To(MatchError(core.ErrIncompleteBuilder))
		_, err = NewSystemBuilder().WithBudget(core.SysLarge).WithRegistry(core.DefaultKernelRegistry()).Build()
		Expect(err).To(MatchError(core.ErrIncompleteBuilder))
		_, err = NewSystemBuilder().WithBudget(core.SysLarge).WithCore(ioCore()).Build()
		Expect(err).To(MatchError(core.ErrIncompleteBuilder))
	})

	It("should reject an invalid budget", func() {
		_, err := NewSystemBuilder().
			WithBudget(core.Budget{Area: -1}).
			WithCore(ioCore()).
			WithRegistry(core.DefaultKernelRegistry()).
			Build()
		Expect(err).To(MatchError(core.ErrInvalidBudget))
	})

	It("should reserve area for a dedicated serial core", func() {
		o3, err := core.NewCoreBuilder().WithVariant(core.O3CMOS).Build()
		Expect(err).NotTo(HaveOccurred())
		sys, err := NewSystemBuilder().
			WithBudget(budget(200, 120)).
			WithCore(ioCore()).
			WithSerialCore(o3).
			WithRegistry(core.DefaultKernelRegistry()).
			Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.UsedArea()).To(Equal(26.48))
		Expect(sys.MaxCoreNum()).To(Equal(22)) // floor((200 - 26.48) / 7.65)
		Expect(sys.SerialCore()).To(BeIdenticalTo(o3))
	})

	It("should reject a serial core at another node", func() {
		o3, err := core.NewCoreBuilder().WithVariant(core.O3CMOS).WithNode(22).Build()
		Expect(err).NotTo(HaveOccurred())
		_, err = NewSystemBuilder().
			WithBudget(core.SysLarge).
			WithCore(ioCore()).
			WithSerialCore(o3).
			WithRegistry(core.DefaultKernelRegistry()).
			Build()
		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
	})
})

var _ = Describe("Area management", func() {
	var sys *System

	BeforeEach(func() {
		sys = newSystem(budget(200, 120))
	})

	It("should take accelerator area from the cores", func() {
		Expect(sys.MaxCoreNum()).To(Equal(26))
		Expect(sys.SetASIC("MMM", "mmm0", 0.1)).To(Succeed())
		Expect(sys.UsedArea()).To(BeNumerically("~", 20, 1e-9))
		Expect(sys.MaxCoreNum()).To(Equal(23))
		acc, ok := sys.ASIC("mmm0")
		Expect(ok).To(BeTrue())
		Expect(acc.Kernel().Name()).To(Equal("MMM"))
	})

	It("should resize an existing accelerator", func() {
		Expect(sys.SetASIC("MMM", "mmm0", 0.1)).To(Succeed())
		Expect(sys.SetASIC("MMM", "mmm0", 0.9)).To(Succeed())
		Expect(sys.UsedArea()).To(BeNumerically("~", 180, 1e-9))
	})

	It("should fail without changing state when area is exhausted", func() {
		Expect(sys.SetASIC("MMM", "mmm0", 0.7)).To(Succeed())
		err := sys.SetASIC("FFT", "fft0", 0.4)
		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Resource).To(Equal("area"))
		Expect(cfgErr.Available).To(BeNumerically("~", 60, 1e-9))
		_, ok := sys.ASIC("fft0")
		Expect(ok).To(BeFalse())
		Expect(sys.UsedArea()).To(BeNumerically("~", 140, 1e-9))
	})

	It("should allow exactly the whole area", func() {
		Expect(sys.SetASIC("MMM", "mmm0", 0.7)).To(Succeed())
		Expect(sys.SetASIC("FFT", "fft0", 0.3)).To(Succeed())
		Expect(sys.MaxCoreNum()).To(Equal(0))
		_, err := sys.OptimalDim()
		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
	})

	It("should keep one accelerator per kernel", func() {
		Expect(sys.SetASIC("MMM", "mmm0", 0.1)).To(Succeed())
		var cfgErr *ConfigurationError
		Expect(errors.As(sys.SetASIC("MMM", "mmm1", 0.1), &cfgErr)).To(BeTrue())
		Expect(errors.As(sys.SetASIC("FFT", "mmm0", 0.1), &cfgErr)).To(BeTrue())
	})

	It("should reject unknown kernels and bad ratios", func() {
		Expect(sys.SetASIC("SPMV", "x", 0.1)).To(MatchError(core.ErrUnknownKernel))
		Expect(sys.SetASIC("MMM", "x", 0)).To(MatchError(core.ErrInvalidParameter))
		Expect(sys.SetASIC("MMM", "x", 1.5)).To(MatchError(core.ErrInvalidParameter))
	})

	It("should remove accelerators", func() {
		Expect(sys.SetASIC("MMM", "mmm0", 0.1)).To(Succeed())
		Expect(sys.RemoveASIC("mmm0")).To(Succeed())
		Expect(sys.ASICs()).To(BeEmpty())
		var cfgErr *ConfigurationError
		Expect(errors.As(sys.RemoveASIC("mmm0"), &cfgErr)).To(BeTrue())
	})

	It("should invalidate the core count sweep on area changes", func() {
		before, err := sys.OptimalDim()
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.SetASIC("BS", "bs0", 0.5)).To(Succeed())
		after, err := sys.OptimalDim()
		Expect(err).NotTo(HaveOccurred())
		Expect(after.CoreNum).To(BeNumerically("<", before.CoreNum))
		Expect(sys.RemoveASIC("bs0")).To(Succeed())
		restored, err := sys.OptimalDim()
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(Equal(before))
	})

	It("should only resize a configured general-purpose accelerator", func() {
		var cfgErr *ConfigurationError
		Expect(errors.As(sys.SetGPAccelerator(0.1), &cfgErr)).To(BeTrue())

		gpSys, err := NewSystemBuilder().
			WithBudget(budget(200, 120)).
			WithCore(ioCore()).
			WithRegistry(core.DefaultKernelRegistry()).
			WithGPAccelerator(core.FPGA, 0.2).
			Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(gpSys.GPAccelerator().Area()).To(BeNumerically("~", 40, 1e-9))
		Expect(gpSys.SetASIC("MMM", "mmm0", 0.85)).NotTo(Succeed())
		Expect(gpSys.SetGPAccelerator(0)).To(Succeed())
		Expect(gpSys.SetASIC("MMM", "mmm0", 0.85)).To(Succeed())
	})
})
