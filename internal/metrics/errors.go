package metrics

import "fmt"

// ConfigurationError is returned before any row is processed when the
// thresholds or set range are invalid.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("metrics config: %s %s", e.Field, e.Reason)
}

// MissingColumnError is returned in strict mode when a configured set index
// has no weight/reps columns in the table.
type MissingColumnError struct {
	SetIndex int
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("metrics: no weight_%d/reps_%d columns", e.SetIndex, e.SetIndex)
}
