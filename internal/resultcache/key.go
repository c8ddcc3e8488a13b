package resultcache

import (
	"fmt"
	"sort"
	"strings"
)

// Key converts the labels describing a design point into a deterministic
// cache key. Equal label sets give equal keys regardless of map order.
func Key(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, labels[k])
	}
	return strings.Join(parts, ",")
}
