package tech

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sync"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/lumos-dse/lumos/internal/logging"
)

//go:embed data
var embedded embed.FS

// DefaultLibrary returns the library built from the embedded characterization
// data. It is loaded on first use.
var DefaultLibrary = sync.OnceValues(func() (*Library, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Library holds the scaling tables of every technology family.
type Library struct {
	models map[Kind]*Model
}

// Model is one technology family.
type Model struct {
	kind   Kind
	tables map[Node]*Table
}

// Load reads characterization data laid out as <family>/<node>.csv with an
// optional <family>/<node>_mc.csv holding Monte-Carlo variation samples.
// Nodes without a data file are reported as ModelDataError on lookup.
func Load(fsys fs.FS) (*Library, error) {
	logger := ctrl.Log.WithName("tech")
	lib := &Library{models: make(map[Kind]*Model)}
	for _, kind := range Kinds() {
		m := &Model{kind: kind, tables: make(map[Node]*Table)}
		for _, node := range ScaledNodes(kind) {
			table, err := loadTable(fsys, kind, node)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			m.tables[node] = table
			logger.V(logging.TRACE).Info("Loaded scaling table",
				"tech", kind.String(), "node", int(node),
				"vmin", table.Vmin(), "vmax", table.Vmax(), "vnom", table.Vnom(),
				"variation", table.HasVariation())
		}
		lib.models[kind] = m
	}
	logger.V(logging.DEBUG).Info("Technology library loaded", "families", len(lib.models))
	return lib, nil
}

func loadTable(fsys fs.FS, kind Kind, node Node) (*Table, error) {
	scale, err := ScaleOf(kind, node)
	if err != nil {
		return nil, err
	}
	base := path.Join(kind.String(), fmt.Sprintf("%d", int(node)))

	f, err := fsys.Open(base + ".csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := parseSamples(f)
	if err != nil {
		return nil, &ModelDataError{Kind: kind, Node: node, Reason: "malformed samples", Err: err}
	}

	var mc []mcSample
	mf, err := fsys.Open(base + "_mc.csv")
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer mf.Close()
		if mc, err = parseMCSamples(mf); err != nil {
			return nil, &ModelDataError{Kind: kind, Node: node, Reason: "malformed Monte-Carlo samples", Err: err}
		}
	}
	return newTable(kind, node, scale.Vnom, samples, mc)
}

// Model returns the technology family kind.
func (l *Library) Model(kind Kind) (*Model, error) {
	m, ok := l.models[kind]
	if !ok {
		return nil, &ModelDataError{Kind: kind, Reason: "technology family not loaded"}
	}
	return m, nil
}

// Table returns the scaling table of kind at node.
func (l *Library) Table(kind Kind, node Node) (*Table, error) {
	m, err := l.Model(kind)
	if err != nil {
		return nil, err
	}
	return m.Table(node)
}

// Kind returns the technology family of the model.
func (m *Model) Kind() Kind { return m.kind }

// Table returns the scaling table at node.
func (m *Model) Table(node Node) (*Table, error) {
	t, ok := m.tables[node]
	if !ok {
		return nil, &ModelDataError{Kind: m.kind, Node: node, Reason: "no characterization data"}
	}
	return t, nil
}

// Nodes returns the characterized nodes, oldest first.
func (m *Model) Nodes() []Node {
	nodes := make([]Node, 0, len(m.tables))
	for n := range m.tables {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	slices.Reverse(nodes)
	return nodes
}
