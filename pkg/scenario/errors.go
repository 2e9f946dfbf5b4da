package scenario

import (
	"fmt"
)

// ConfigError reports invalid suite configuration. It is fatal to the whole
// suite and surfaces before any scenario runs.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// AmbiguousStateError reports a fixture holding more than one entry
// matching a state marker name. Always fatal for the affected scenario; the
// harness never silently picks one candidate.
type AmbiguousStateError struct {
	FixturePath string
	Marker      string
	Candidates  []string
}

func (e *AmbiguousStateError) Error() string {
	return fmt.Sprintf("found multiple %s entries in %s: %v", e.Marker, e.FixturePath, e.Candidates)
}

// MissingStateError reports a fixture without an entry matching a state
// marker name. Whether this fails the scenario depends on the configured
// allowances.
type MissingStateError struct {
	FixturePath string
	Marker      string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("could not find %s in %s", e.Marker, e.FixturePath)
}

// ExecutionError wraps a failure raised by the caller-supplied scenario
// logic. The underlying error is propagated verbatim via Unwrap.
type ExecutionError struct {
	Scenario string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("scenario %s logic failed: %v", e.Scenario, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
