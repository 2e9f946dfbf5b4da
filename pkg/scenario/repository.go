// Package scenario discovers fixture-backed test scenarios and runs them:
// each immediate child of a fixtures root names one scenario, whose optional
// initial state is staged into an isolated working directory before the
// caller's logic runs and whose optional final state the working directory
// is checked against afterwards. Fixtures and their state entries may be
// plain directories or archives; both are handled transparently.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rcxwhiz/unittest-scenarios/pkg/archive"
)

// Scenario is one discovered test case. Immutable after discovery.
type Scenario struct {
	// Name uniquely identifies the scenario within its suite. It is the
	// fixture entry's base name stripped of archive extensions, with a
	// numeric suffix appended on collision.
	Name string
	// FixturePath is the absolute location of the fixture's directory or
	// archive.
	FixturePath string
}

// Func is the caller-supplied scenario logic, invoked once per scenario
// with the scenario's name and absolute fixture path. A non-nil return
// fails the scenario.
type Func func(scenarioName, fixturePath string) error

// Discover enumerates the fixtures root and derives one Scenario per
// immediate child entry. Names are de-duplicated by appending "_1", "_2", …
// Configuration problems (unset or nonexistent root) are returned as a
// *ConfigError.
func Discover(cfg Config) ([]Scenario, error) {
	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(cfg.FixturesRoot)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("could not list fixtures root %s: %v", cfg.FixturesRoot, err)}
	}

	taken := make(map[string]struct{}, len(entries))
	scenarios := make([]Scenario, 0, len(entries))
	for _, entry := range entries {
		fixturePath, err := filepath.Abs(filepath.Join(cfg.FixturesRoot, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("could not resolve fixture path for %s: %w", entry.Name(), err)
		}

		base := archive.StripSuffixes(entry.Name())
		name := base
		for i := 1; ; i++ {
			if _, collision := taken[name]; !collision {
				break
			}
			name = fmt.Sprintf("%s_%d", base, i)
		}
		taken[name] = struct{}{}

		scenarios = append(scenarios, Scenario{Name: name, FixturePath: fixturePath})
	}
	return scenarios, nil
}

// resolveState locates the zero-or-one child of fixtureDir whose base name,
// ignoring archive extensions, equals marker. Zero matches return a
// *MissingStateError, more than one a *AmbiguousStateError.
func resolveState(fixtureDir, marker string) (string, error) {
	entries, err := os.ReadDir(fixtureDir)
	if err != nil {
		return "", fmt.Errorf("could not list fixture %s: %w", fixtureDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if archive.StripSuffixes(entry.Name()) == marker {
			candidates = append(candidates, entry.Name())
		}
	}
	switch len(candidates) {
	case 0:
		return "", &MissingStateError{FixturePath: fixtureDir, Marker: marker}
	case 1:
		return filepath.Join(fixtureDir, candidates[0]), nil
	default:
		sort.Strings(candidates)
		return "", &AmbiguousStateError{FixturePath: fixtureDir, Marker: marker, Candidates: candidates}
	}
}
