package scenario

import (
	"fmt"
	"os"
)

// Default marker base names for the state entries inside a fixture.
const (
	DefaultInitialStateName = "initial_state"
	DefaultFinalStateName   = "final_state"
)

// Config describes one scenario suite. The zero value of every field except
// FixturesRoot is the documented default, so a Config listing only the
// fixtures root is valid.
type Config struct {
	// FixturesRoot is the directory whose immediate children are the
	// scenario fixtures. Required; the suite fails fast when it is unset
	// or does not exist.
	FixturesRoot string `json:"fixturesRoot" yaml:"fixtures_root"`

	// Strategy selects final-state verification. An empty value means
	// FullContents.
	Strategy CheckStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// RequireInitialState makes a fixture without an initial state entry a
	// failure. By default a missing initial state just leaves the working
	// directory empty.
	RequireInitialState bool `json:"requireInitialState,omitempty" yaml:"require_initial_state,omitempty"`

	// AllowMissingFinalState makes a fixture without a final state entry
	// pass unconditionally. By default a missing final state is a failure.
	AllowMissingFinalState bool `json:"allowMissingFinalState,omitempty" yaml:"allow_missing_final_state,omitempty"`

	// AllowExtraFinal tolerates files in the working directory that the
	// final state does not list. The final state itself must always be
	// fully present.
	AllowExtraFinal bool `json:"allowExtraFinal,omitempty" yaml:"allow_extra_final,omitempty"`

	// InitialStateName and FinalStateName override the marker base names
	// matched inside each fixture, ignoring archive extensions.
	InitialStateName string `json:"initialStateName,omitempty" yaml:"initial_state_name,omitempty"`
	FinalStateName   string `json:"finalStateName,omitempty" yaml:"final_state_name,omitempty"`
}

// normalized returns a copy of c with defaults applied.
func (c Config) normalized() Config {
	if c.Strategy == "" {
		c.Strategy = FullContents
	}
	if c.InitialStateName == "" {
		c.InitialStateName = DefaultInitialStateName
	}
	if c.FinalStateName == "" {
		c.FinalStateName = DefaultFinalStateName
	}
	return c
}

// validate checks the suite-level configuration. Any error here is a
// ConfigError and aborts the whole suite before a single scenario runs.
func (c Config) validate() error {
	if c.FixturesRoot == "" {
		return &ConfigError{Reason: "fixtures root is not configured"}
	}
	info, err := os.Stat(c.FixturesRoot)
	if os.IsNotExist(err) {
		return &ConfigError{Reason: fmt.Sprintf("could not find fixtures root %s", c.FixturesRoot)}
	}
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("could not access fixtures root %s: %v", c.FixturesRoot, err)}
	}
	if !info.IsDir() {
		return &ConfigError{Reason: fmt.Sprintf("fixtures root %s is not a directory", c.FixturesRoot)}
	}
	if _, ok := strategyToString[c.Strategy]; !ok {
		return &ConfigError{Reason: fmt.Sprintf("invalid check strategy %q", string(c.Strategy))}
	}
	return nil
}
