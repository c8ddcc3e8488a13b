/*
Copyright 2025 The Lumos Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resultcache

//go:generate mockgen -destination=mocks/mock_resultcache.go -package=mocks github.com/lumos-dse/lumos/internal/resultcache ReadWriter

import (
	"context"

	"github.com/lumos-dse/lumos/api/v1alpha1"
)

// Reader provides read-only access to cached sweep records.
// The sweep runner uses it to skip design points evaluated by an earlier run.
type Reader interface {
	// Get returns the record stored under key.
	// The boolean is false if nothing is stored.
	Get(ctx context.Context, key string) (v1alpha1.SweepRecord, bool, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)
}

// Writer provides write access to the cache.
type Writer interface {
	// Put stores rec under key, replacing any previous record.
	Put(ctx context.Context, key string, rec v1alpha1.SweepRecord) error

	// Flush persists buffered records. Backends that write through return nil.
	Flush(ctx context.Context) error
}

// ReadWriter combines both read and write access to the cache.
type ReadWriter interface {
	Reader
	Writer

	// Close flushes and releases the backend.
	Close() error
}
