package core

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumos-dse/lumos/pkg/tech"
)

var _ = Describe("Core", func() {
	Context("at its reference node", func() {
		var c *Core

		BeforeEach(func() {
			var err error
			c, err = NewCoreBuilder().WithVariant(IOCMOS).Build()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the baseline exactly at nominal voltage", func() {
			perf, err := c.Perf(c.Vnom())
			Expect(err).NotTo(HaveOccurred())
			Expect(perf).To(Equal(12.92))

			freq, err := c.Freq(c.Vnom())
			Expect(err).NotTo(HaveOccurred())
			Expect(freq).To(Equal(4.2))

			power, err := c.Power(c.Vnom())
			Expect(err).NotTo(HaveOccurred())
			Expect(power).To(BeNumerically("~", 6.14+1.058, 1e-12))
			Expect(c.Area()).To(Equal(7.65))
		})

		It("should scale perf and power with voltage", func() {
			lowPerf, _ := c.Perf(800)
			highPerf, _ := c.Perf(1200)
			lowPower, _ := c.Power(800)
			highPower, _ := c.Power(1200)
			Expect(lowPerf).To(BeNumerically("<", 12.92))
			Expect(highPerf).To(BeNumerically(">", 12.92))
			Expect(lowPower).To(BeNumerically("<", highPower))
		})

		It("should reject voltages outside the node range", func() {
			for _, vdd := range []int{c.Vmin() - 1, c.Vmax() + 1} {
				_, err := c.Perf(vdd)
				var rangeErr *tech.RangeError
				Expect(errors.As(err, &rangeErr)).To(BeTrue())
				Expect(rangeErr.Vdd).To(Equal(vdd))

				_, err = c.Power(vdd)
				Expect(errors.As(err, &rangeErr)).To(BeTrue())
			}
		})
	})

	It("should match a custom baseline at its own node", func() {
		c, err := NewCoreBuilder().WithBaseline("custom", Baseline{
			Area: 5, Perf: 12.92, Freq: 4.2, DynamicPower: 3, StaticPower: 1, Node: 22, Tech: tech.CMOSLP,
		}).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Name()).To(Equal("custom"))
		perf, err := c.Perf(c.Vnom())
		Expect(err).NotTo(HaveOccurred())
		Expect(perf).To(Equal(12.92))
	})

	It("should re-derive the design at another node", func() {
		c45, err := NewCoreBuilder().WithVariant(IOCMOS).Build()
		Expect(err).NotTo(HaveOccurred())
		c22, err := c45.AtNode(22)
		Expect(err).NotTo(HaveOccurred())
		Expect(c22.Node()).To(Equal(tech.Node(22)))
		Expect(c22.Area()).To(BeNumerically("~", 7.65*0.25, 1e-12))
		Expect(c22.PerfNominal()).To(BeNumerically("~", 12.92*1.21, 1e-12))
		Expect(c45.Node()).To(Equal(tech.Node(45)))
	})

	It("should lower performance under variation", func() {
		nominal, err := NewCoreBuilder().WithVariant(IOCMOS).WithNode(22).Build()
		Expect(err).NotTo(HaveOccurred())
		varied, err := NewCoreBuilder().WithVariant(IOCMOS).WithNode(22).WithVariation(tech.Sigma3, 1).Build()
		Expect(err).NotTo(HaveOccurred())
		p0, _ := nominal.Perf(600)
		p1, _ := varied.Perf(600)
		Expect(p1).To(BeNumerically("<", p0))
		Expect(varied.Variation().Sigma).To(Equal(tech.Sigma3))

		shifted, err := varied.AtNode(32)
		Expect(err).NotTo(HaveOccurred())
		Expect(shifted.Variation()).NotTo(BeNil())
	})

	It("should build TFET cores only where TFET data exists", func() {
		c, err := NewCoreBuilder().WithVariant(BigTFET).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Tech()).To(Equal(tech.TFETHomo30))
		sp, err := c.StaticPower(c.Vnom())
		Expect(err).NotTo(HaveOccurred())
		Expect(sp).To(BeZero())

		_, err = NewCoreBuilder().WithVariant(IOTFET).WithNode(45).Build()
		var dataErr *tech.ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
	})

	It("should refuse variation without Monte-Carlo data", func() {
		_, err := NewCoreBuilder().WithVariant(SmallFinFET).WithVariation(tech.Sigma1, 0.5).Build()
		var dataErr *tech.ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
	})

	It("should refuse an incomplete builder", func() {
		_, err := NewCoreBuilder().WithNode(22).Build()
		Expect(errors.Is(err, ErrIncompleteBuilder)).To(BeTrue())
		_, err = NewCoreBuilder().WithVariant(Variant(42)).Build()
		Expect(errors.Is(err, ErrIncompleteBuilder)).To(BeTrue())
	})

	It("should not share state between builder copies", func() {
		base := NewCoreBuilder().WithVariant(IOCMOS)
		at22 := base.WithNode(22)
		c, err := base.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Node()).To(Equal(tech.Node(45)))
		c, err = at22.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Node()).To(Equal(tech.Node(22)))
	})
})
