package config

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

const testNamespace = "test-ns"

func newScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	_ = clientgoscheme.AddToScheme(scheme)
	return scheme
}

func makeConfigMap(name string, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace},
		Data:       data,
	}
}

const testWorkload = "applications:\n- name: app0\n  f: 0.9\n  kernels:\n    MMM: 0.5\n"

var _ = Describe("ConfigMapSource", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should read a complete suite document", func() {
		cm := makeConfigMap(DefaultSuiteConfigMapName, map[string]string{
			SuiteKey:    "kernels:\n- name: MMM\n  accelerators:\n    asic: {miu: 27.4, phi: 0.79, bandwidth: 3.62}\n",
			"ignored":   "name: FFT\n",
			WorkloadKey: testWorkload,
		})
		k8sClient := fake.NewClientBuilder().WithScheme(newScheme()).WithObjects(cm).Build()
		src := &ConfigMapSource{Client: k8sClient, Key: client.ObjectKey{Namespace: testNamespace, Name: DefaultSuiteConfigMapName}}

		suite, err := src.Suite(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(suite.Kernels).To(HaveLen(1))
		Expect(suite.Kernels[0].Name).To(Equal("MMM"))

		w, err := src.Workload(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Applications).To(HaveLen(1))
		Expect(w.Applications[0].Kernels).To(HaveKeyWithValue("MMM", 0.5))
	})

	It("should assemble a suite from kernel entries", func() {
		cm := makeConfigMap("entries", map[string]string{
			GlobalDefaultsKey: "occur: 0.5\n",
			"mmm":             "name: MMM\naccelerators:\n  gpu: {miu: 3.41, phi: 0.74, bandwidth: 0.725}\n",
		})
		k8sClient := fake.NewClientBuilder().WithScheme(newScheme()).WithObjects(cm).Build()
		src := &ConfigMapSource{Client: k8sClient, Key: client.ObjectKey{Namespace: testNamespace, Name: "entries"}}

		suite, err := src.Suite(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(suite.Kernels).To(HaveLen(1))
		Expect(suite.Kernels[0].Occur).To(Equal(0.5))

		_, err = src.Workload(ctx)
		Expect(err).To(MatchError(ContainSubstring(WorkloadKey)))
	})

	It("should fail when the ConfigMap does not exist", func() {
		k8sClient := fake.NewClientBuilder().WithScheme(newScheme()).Build()
		src := &ConfigMapSource{Client: k8sClient, Key: client.ObjectKey{Namespace: testNamespace, Name: "absent"}}
		_, err := src.Suite(ctx)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FileSource", func() {
	It("should fall back to the built-in kernels", func() {
		suite, err := FileSource{}.Suite(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(suite.Kernels).To(HaveLen(3))
	})

	It("should read suite and workload files", func() {
		dir := GinkgoT().TempDir()
		suitePath := filepath.Join(dir, "kernels.yaml")
		workloadPath := filepath.Join(dir, "workload.yaml")
		Expect(os.WriteFile(suitePath, []byte("kernels:\n- name: FFT\n  accelerators:\n    asic: {miu: 733, phi: 5.34, bandwidth: 1}\n"), 0o600)).To(Succeed())
		Expect(os.WriteFile(workloadPath, []byte(testWorkload), 0o600)).To(Succeed())

		src := FileSource{SuitePath: suitePath, WorkloadPath: workloadPath}
		suite, err := src.Suite(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(suite.Kernels[0].Name).To(Equal("FFT"))
		w, err := src.Workload(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Applications[0].Name).To(Equal("app0"))
	})

	It("should report a missing workload file", func() {
		_, err := FileSource{WorkloadPath: "/nonexistent/workload.yaml"}.Workload(context.Background())
		Expect(err).To(MatchError(ContainSubstring("failed to read workload")))
	})
})
