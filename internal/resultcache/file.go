package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/yaml"

	"github.com/lumos-dse/lumos/api/v1alpha1"
	"github.com/lumos-dse/lumos/internal/logging"
)

// entry is one persisted record.
type entry struct {
	Key    string               `json:"key"`
	Record v1alpha1.SweepRecord `json:"record"`
}

// File keeps records in memory and writes them to a single YAML or JSON
// document on Flush. A path ending in .json selects JSON.
type File struct {
	*Memory
	path string
}

// OpenFile loads the cache stored at path. A missing file is an empty cache.
func OpenFile(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result cache %s: %w", path, err)
	}
	var entries []entry
	if f.isJSON() {
		err = json.Unmarshal(data, &entries)
	} else {
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse result cache %s: %w", path, err)
	}
	for _, e := range entries {
		f.records[e.Key] = e.Record
	}
	ctrl.Log.WithName("resultcache").V(logging.DEBUG).Info("Loaded result cache",
		"path", path, "records", len(entries))
	return f, nil
}

func (f *File) isJSON() bool {
	return strings.EqualFold(filepath.Ext(f.path), ".json")
}

// Flush writes every record to the file, replacing it atomically.
func (f *File) Flush(ctx context.Context) error {
	records := f.snapshot()
	entries := make([]entry, 0, len(records))
	for k, rec := range records {
		entries = append(entries, entry{Key: k, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var (
		data []byte
		err  error
	)
	if f.isJSON() {
		data, err = json.MarshalIndent(entries, "", "  ")
	} else {
		data, err = yaml.Marshal(entries)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write result cache %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write result cache %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write result cache %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to write result cache %s: %w", f.path, err)
	}
	ctrl.LoggerFrom(ctx).V(logging.DEBUG).Info("Flushed result cache", "path", f.path, "records", len(entries))
	return nil
}

// Close flushes the cache.
func (f *File) Close() error {
	return f.Flush(context.Background())
}
