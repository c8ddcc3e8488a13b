package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/lumos-dse/lumos/internal/config"
	"github.com/lumos-dse/lumos/internal/logging"
	pkgconfig "github.com/lumos-dse/lumos/pkg/config"
	"github.com/lumos-dse/lumos/pkg/core"
	"github.com/lumos-dse/lumos/pkg/tech"
)

// app is the state shared by every command.
type app struct {
	out io.Writer
	cfg config.Config
	lib *tech.Library

	// newClient connects to the cluster holding suite ConfigMaps.
	newClient func() (client.Client, error)
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out, newClient: clusterClient}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lumos",
		Short:         "Design space exploration for heterogeneous chips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			if _, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}); err != nil {
				return err
			}
			if cfg.DataDir != "" {
				a.lib, err = tech.Load(os.DirFS(cfg.DataDir))
			} else {
				a.lib, err = tech.DefaultLibrary()
			}
			return err
		},
	}
	cmd.SetOut(a.out)
	config.AddFlags(cmd.PersistentFlags())
	cmd.AddCommand(a.evalCommand(), a.dagCommand(), a.sweepCommand(), a.generateCommand(), a.listCommand())
	return cmd
}

func clusterClient() (client.Client, error) {
	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, err
	}
	return client.New(restConfig, client.Options{Scheme: scheme})
}

// inputFlags selects where the kernel suite and workload come from.
type inputFlags struct {
	suite     string
	workload  string
	configMap string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.suite, "suite", "", "kernel suite YAML file (default: built-in kernels)")
	cmd.Flags().StringVar(&f.workload, "workload", "", "workload YAML file")
	cmd.Flags().StringVar(&f.configMap, "suite-configmap", "",
		"read the suite and workload from this ConfigMap, as namespace/name")
}

func (a *app) source(f inputFlags) (config.Source, error) {
	if f.configMap == "" {
		if f.workload == "" {
			return nil, fmt.Errorf("either --workload or --suite-configmap is required")
		}
		return config.FileSource{SuitePath: f.suite, WorkloadPath: f.workload}, nil
	}
	namespace, name, ok := strings.Cut(f.configMap, "/")
	if !ok {
		namespace, name = "default", f.configMap
	}
	if name == "" {
		name = config.DefaultSuiteConfigMapName
	}
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	return &config.ConfigMapSource{Client: c, Key: client.ObjectKey{Namespace: namespace, Name: name}}, nil
}

// load resolves the kernel registry and workload of src.
func load(cmd *cobra.Command, src config.Source) (*core.KernelRegistry, []*core.Application, error) {
	ctx := cmd.Context()
	suite, err := src.Suite(ctx)
	if err != nil {
		return nil, nil, err
	}
	registry, err := suite.BuildRegistry()
	if err != nil {
		return nil, nil, err
	}
	spec, err := src.Workload(ctx)
	if err != nil {
		return nil, nil, err
	}
	workload, err := pkgconfig.BuildWorkload(spec, registry)
	if err != nil {
		return nil, nil, err
	}
	ctrl.LoggerFrom(ctx).V(logging.DEBUG).Info("Loaded inputs", "kernels", registry.Len(), "applications", len(workload))
	return registry, workload, nil
}

// relativeTo resolves path against the directory of base unless it is absolute or empty.
func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(base), path)
}
