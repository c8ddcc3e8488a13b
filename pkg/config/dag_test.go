package config

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumos-dse/lumos/pkg/core"
)

const dagYAML = `
name: pipeline
tasks:
- kernel: MMM
  length: 10
  parallel: 0.9
- kernel: BS
  length: 20
  parallel: 1
  after: [0]
- kernel: FFT
  length: 15
  after: [0]
- kernel: MMM
  length: 5
  after: [1, 2]
`

var _ = Describe("DAGSpec", func() {
	var registry *core.KernelRegistry

	BeforeEach(func() {
		registry = core.DefaultKernelRegistry()
	})

	It("should build the task graph", func() {
		spec, err := ParseDAG([]byte(dagYAML))
		Expect(err).NotTo(HaveOccurred())
		app, err := BuildDAG(spec, registry)
		Expect(err).NotTo(HaveOccurred())

		Expect(app.Name()).To(Equal("pipeline"))
		Expect(app.Len()).To(Equal(4))
		Expect(app.Task(0)).To(Equal(core.Task{Kernel: "MMM", Length: 10, Parallel: 0.9}))
		Expect(app.Predecessors(3)).To(Equal([]int{1, 2}))
		Expect(app.Levels()).To(Equal([][]int{{0}, {1, 2}, {3}}))
		Expect(app.TotalLength()).To(Equal(50.0))
	})

	It("should reject unknown fields", func() {
		_, err := ParseDAG([]byte("name: x\ntasks:\n- kernel: MMM\n  length: 1\n  deps: [0]\n"))
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("should report invalid tasks",
		func(spec DAGSpec, field string) {
			err := spec.Validate(registry)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(field))
			_, err = BuildDAG(spec, registry)
			Expect(err).To(HaveOccurred())
		},
		Entry("missing name", DAGSpec{Tasks: []TaskSpec{{Kernel: "MMM", Length: 1}}}, "name"),
		Entry("no tasks", DAGSpec{Name: "x"}, "tasks"),
		Entry("unknown kernel", DAGSpec{Name: "x", Tasks: []TaskSpec{{Kernel: "SPMV", Length: 1}}}, "tasks[0].kernel"),
		Entry("zero length", DAGSpec{Name: "x", Tasks: []TaskSpec{{Kernel: "MMM"}}}, "tasks[0].length"),
		Entry("parallel above one", DAGSpec{Name: "x", Tasks: []TaskSpec{{Kernel: "MMM", Length: 1, Parallel: 2}}}, "tasks[0].parallel"),
		Entry("forward dependency", DAGSpec{Name: "x", Tasks: []TaskSpec{
			{Kernel: "MMM", Length: 1, After: []int{1}},
			{Kernel: "MMM", Length: 1},
		}}, "tasks[0].after[0]"),
	)

	It("should skip kernel checks without a registry", func() {
		spec := DAGSpec{Name: "x", Tasks: []TaskSpec{{Kernel: "SPMV", Length: 1}}}
		Expect(spec.Validate(nil)).To(Succeed())
	})
})
