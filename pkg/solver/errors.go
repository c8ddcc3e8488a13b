package solver

import "fmt"

// ConfigurationError reports a design that does not fit its budget.
type ConfigurationError struct {
	// Resource names the exhausted resource, e.g. "area" or "power".
	Resource  string
	Requested float64
	Available float64
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Resource == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: requested %.4g %s, available %.4g",
		e.Reason, e.Requested, e.Resource, e.Available)
}
