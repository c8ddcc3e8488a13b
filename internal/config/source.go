package config

import (
	"context"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/lumos-dse/lumos/internal/logging"
	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
	"github.com/lumos-dse/lumos/pkg/core"
)

// Source provides the kernel suite and workload to evaluate.
type Source interface {
	Suite(ctx context.Context) (pkgconfig.SuiteSpec, error)
	Workload(ctx context.Context) (pkgconfig.WorkloadSpec, error)
}

// FileSource reads YAML files. An empty SuitePath selects the built-in kernels.
type FileSource struct {
	SuitePath    string
	WorkloadPath string
}

var _ Source = FileSource{}

// Suite implements Source.
func (s FileSource) Suite(ctx context.Context) (pkgconfig.SuiteSpec, error) {
	if s.SuitePath == "" {
		ctrl.LoggerFrom(ctx).V(logging.DEBUG).Info("No kernel suite file, using built-in kernels")
		return pkgconfig.SuiteSpecFrom(core.DefaultKernelRegistry()), nil
	}
	data, err := os.ReadFile(s.SuitePath)
	if err != nil {
		return pkgconfig.SuiteSpec{}, fmt.Errorf("failed to read kernel suite: %w", err)
	}
	return pkgconfig.ParseSuite(data)
}

// Workload implements Source.
func (s FileSource) Workload(_ context.Context) (pkgconfig.WorkloadSpec, error) {
	data, err := os.ReadFile(s.WorkloadPath)
	if err != nil {
		return pkgconfig.WorkloadSpec{}, fmt.Errorf("failed to read workload: %w", err)
	}
	return pkgconfig.ParseWorkload(data)
}

// ConfigMapSource reads the suite and workload from a ConfigMap, see
// SuiteKey, WorkloadKey and ParseKernelConfigMap for its layout.
type ConfigMapSource struct {
	Client client.Client
	Key    client.ObjectKey
}

var _ Source = &ConfigMapSource{}

func (s *ConfigMapSource) configMap(ctx context.Context) (*corev1.ConfigMap, error) {
	cm := &corev1.ConfigMap{}
	if err := s.Client.Get(ctx, s.Key, cm); err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s: %w", s.Key, err)
	}
	return cm, nil
}

// Suite implements Source.
func (s *ConfigMapSource) Suite(ctx context.Context) (pkgconfig.SuiteSpec, error) {
	cm, err := s.configMap(ctx)
	if err != nil {
		return pkgconfig.SuiteSpec{}, err
	}
	if doc, ok := cm.Data[SuiteKey]; ok {
		return pkgconfig.ParseSuite([]byte(doc))
	}
	suite := ParseKernelConfigMap(cm.Data).Suite()
	ctrl.LoggerFrom(ctx).V(logging.DEBUG).Info("Loaded kernel suite from ConfigMap entries",
		"configMap", s.Key.String(),
		"kernelCount", len(suite.Kernels))
	return suite, nil
}

// Workload implements Source.
func (s *ConfigMapSource) Workload(ctx context.Context) (pkgconfig.WorkloadSpec, error) {
	cm, err := s.configMap(ctx)
	if err != nil {
		return pkgconfig.WorkloadSpec{}, err
	}
	doc, ok := cm.Data[WorkloadKey]
	if !ok {
		return pkgconfig.WorkloadSpec{}, fmt.Errorf("ConfigMap %s has no %s key", s.Key, WorkloadKey)
	}
	return pkgconfig.ParseWorkload([]byte(doc))
}
