package resultcache

import (
	"fmt"

	"github.com/lumos-dse/lumos/internal/config"
)

// New opens the cache backend named by cfg. The none backend is an
// in-process cache discarded on exit.
func New(cfg config.CacheConfig) (ReadWriter, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return NewMemory(), nil
	case config.CacheFile:
		return OpenFile(cfg.Path)
	case config.CacheSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported result cache backend: %q", cfg.Backend)
	}
}
