package scenario

import (
	"context"

	"github.com/rcxwhiz/unittest-scenarios/pkg/plog"
	"github.com/rcxwhiz/unittest-scenarios/pkg/workdir"
)

// Suite binds a discovered set of scenarios to their runner. Scenarios are
// executed strictly one after another, each inside a freshly acquired
// isolated working directory.
type Suite struct {
	cfg         Config
	scenarios   []Scenario
	runner      *Runner
	connections []workdir.Connection
}

// NewSuite discovers the scenarios under cfg.FixturesRoot and prepares a
// suite running logic for each of them. The optional connections are
// applied to every scenario's isolated directory on acquisition.
// Configuration errors surface here, before anything runs.
func NewSuite(cfg Config, logic Func, connections ...workdir.Connection) (*Suite, error) {
	scenarios, err := Discover(cfg)
	if err != nil {
		return nil, err
	}
	return &Suite{
		cfg:         cfg.normalized(),
		scenarios:   scenarios,
		runner:      NewRunner(cfg, logic),
		connections: connections,
	}, nil
}

// Scenarios returns the discovered scenarios in fixtures-root order.
func (s *Suite) Scenarios() []Scenario {
	return s.scenarios
}

// RunScenario executes a single scenario inside its own isolated working
// directory, releasing the directory on every path.
func (s *Suite) RunScenario(ctx context.Context, scn Scenario) Result {
	dir, err := workdir.Acquire(s.connections...)
	if err != nil {
		return failure(scn, StagingInitial, err)
	}
	result := s.runner.Run(ctx, scn, dir.Path())
	if err := dir.Release(); err != nil {
		plog.Warn("failed to release isolated directory", "scenario", scn.Name, "error", err)
	}
	return result
}

// Run executes every scenario in order and collects their results. One
// scenario's failure never blocks its siblings.
func (s *Suite) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(s.scenarios))
	for _, scn := range s.scenarios {
		result := s.RunScenario(ctx, scn)
		if result.State == Passed {
			plog.Info("scenario passed", "scenario", scn.Name)
		} else {
			plog.Error("scenario failed", "scenario", scn.Name, "phase", result.FailedIn.String(), "error", result.Err)
		}
		results = append(results, result)
	}
	return results
}
