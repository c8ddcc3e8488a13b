package tech

import (
	"errors"
	"testing/fstest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const validSamples = `vdd,delay,dp,sp
0.300,10,0.01,0.02
0.400,5,0.04,0.03
0.500,3,0.08,0.05
0.600,2,0.15,0.08
`

var _ = Describe("Library", func() {
	var lib *Library

	BeforeEach(func() {
		var err error
		lib, err = DefaultLibrary()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should load every embedded family", func() {
		for _, kind := range Kinds() {
			m, err := lib.Model(kind)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Nodes()).NotTo(BeEmpty(), kind.String())
		}
	})

	It("should list nodes oldest first", func() {
		m, err := lib.Model(FinFETHP)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Nodes()).To(Equal([]Node{20, 16, 14, 10, 7}))
	})

	It("should report nodes without data as ModelDataError", func() {
		_, err := lib.Table(TFETHomo30, 45)
		var dataErr *ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
		Expect(dataErr.Node).To(Equal(Node(45)))
	})

	It("should return the same library on every call", func() {
		again, err := DefaultLibrary()
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeIdenticalTo(lib))
	})
})

var _ = Describe("Load", func() {
	It("should reject characteristics that decrease with voltage", func() {
		fsys := fstest.MapFS{
			"cmos-hp/45.csv": {Data: []byte(`vdd,delay,dp,sp
0.900,3,0.30,0.05
1.000,2,0.20,0.06
1.100,1.5,0.40,0.07
`)},
		}
		_, err := Load(fsys)
		var dataErr *ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
		Expect(dataErr.Reason).To(ContainSubstring("dynamic power decreases"))
	})

	It("should reject a nominal voltage outside the sampled range", func() {
		// cmos-hp 45nm is nominal at 1000 mV
		fsys := fstest.MapFS{"cmos-hp/45.csv": {Data: []byte(validSamples)}}
		_, err := Load(fsys)
		var dataErr *ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
		Expect(dataErr.Reason).To(ContainSubstring("nominal voltage"))
	})

	It("should reject a malformed header", func() {
		fsys := fstest.MapFS{"tfet-homo30nm/22.csv": {Data: []byte("v,delay,dp,sp\n0.3,1,1,1\n")}}
		_, err := Load(fsys)
		Expect(err).To(HaveOccurred())
	})

	It("should reject too few samples", func() {
		fsys := fstest.MapFS{"tfet-homo30nm/22.csv": {Data: []byte("vdd,delay,dp,sp\n0.4,1,1,1\n0.5,0.5,2,2\n")}}
		_, err := Load(fsys)
		var dataErr *ModelDataError
		Expect(errors.As(err, &dataErr)).To(BeTrue())
	})

	It("should load a partial data set", func() {
		fsys := fstest.MapFS{"tfet-homo30nm/22.csv": {Data: []byte(validSamples)}}
		lib, err := Load(fsys)
		Expect(err).NotTo(HaveOccurred())
		table, err := lib.Table(TFETHomo30, 22)
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Vmin()).To(Equal(300))
		Expect(table.Vmax()).To(Equal(600))
		Expect(table.HasVariation()).To(BeFalse())
		_, err = lib.Table(CMOSHP, 45)
		Expect(err).To(HaveOccurred())
	})
})
