package config

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
)

var _ = Describe("ParseKernelConfigMap", func() {
	It("should return empty entries for nil data", func() {
		Expect(ParseKernelConfigMap(nil)).To(BeEmpty())
	})

	It("should merge kernel entries over the defaults", func() {
		entries := ParseKernelConfigMap(map[string]string{
			GlobalDefaultsKey: "occur: 0.3\naccelerators:\n  fpga: {miu: 1, phi: 0.5, bandwidth: 1}\n",
			"mmm":             "name: MMM\naccelerators:\n  asic: {miu: 27.4, phi: 0.79, bandwidth: 3.62}\n",
			"fft":             "name: FFT\noccur: 0.9\naccelerators:\n  fpga: {miu: 2.81, phi: 0.29, bandwidth: 1}\n",
		})

		mmm, ok := entries.Kernel("MMM")
		Expect(ok).To(BeTrue())
		Expect(mmm.Occur).To(Equal(0.3))
		Expect(mmm.Accelerators).To(HaveKey("fpga"))
		Expect(mmm.Accelerators).To(HaveKeyWithValue("asic", pkgconfig.KernelParamsSpec{Miu: 27.4, Phi: 0.79, Bandwidth: 3.62}))

		fft, ok := entries.Kernel("FFT")
		Expect(ok).To(BeTrue())
		Expect(fft.Occur).To(Equal(0.9))
		Expect(fft.Accelerators["fpga"].Miu).To(Equal(2.81))

		_, ok = entries.Kernel(GlobalDefaultsKey)
		Expect(ok).To(BeFalse())

		suite := entries.Suite()
		Expect(suite.Kernels).To(HaveLen(2))
		Expect(suite.Kernels[0].Name).To(Equal("FFT"))
		_, err := suite.BuildRegistry()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should not let a kernel entry modify the defaults", func() {
		entries := ParseKernelConfigMap(map[string]string{
			GlobalDefaultsKey: "accelerators:\n  fpga: {miu: 1, phi: 0.5, bandwidth: 1}\n",
			"a":               "name: A\naccelerators:\n  fpga: {miu: 9, phi: 0.5, bandwidth: 1}\n",
		})
		a, _ := entries.Kernel("A")
		Expect(a.Accelerators["fpga"].Miu).To(Equal(9.0))
		Expect(entries[GlobalDefaultsKey].Accelerators["fpga"].Miu).To(Equal(1.0))
	})

	It("should skip unparsable and unnamed entries", func() {
		entries := ParseKernelConfigMap(map[string]string{
			"broken":  "name: [",
			"unnamed": "occur: 0.2\n",
			"ok":      "name: BS\naccelerators:\n  gpu: {miu: 17, phi: 0.57, bandwidth: 5.85}\n",
		})
		Expect(entries).To(HaveLen(1))
		Expect(entries).To(HaveKey("BS"))
	})

	It("should keep the first key on duplicate names", func() {
		entries := ParseKernelConfigMap(map[string]string{
			"a-first":  "name: MMM\noccur: 0.1\n",
			"b-second": "name: MMM\noccur: 0.2\n",
		})
		Expect(entries["MMM"].Occur).To(Equal(0.1))
	})

	It("should ignore the document keys", func() {
		entries := ParseKernelConfigMap(map[string]string{
			SuiteKey:    "kernels: []\n",
			WorkloadKey: "applications: []\n",
		})
		Expect(entries).To(BeEmpty())
	})
})
