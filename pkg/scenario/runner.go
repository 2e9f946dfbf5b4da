package scenario

import (
	"context"
	"errors"

	"github.com/rcxwhiz/unittest-scenarios/pkg/archive"
	"github.com/rcxwhiz/unittest-scenarios/pkg/pathcmp"
	"github.com/rcxwhiz/unittest-scenarios/pkg/pathcopy"
	"github.com/rcxwhiz/unittest-scenarios/pkg/plog"
)

// State identifies a phase in a scenario's lifecycle.
type State int

const (
	Discovered State = iota
	StagingInitial
	Executing
	CheckingFinal
	Passed
	Failed
)

var stateNames = map[State]string{
	Discovered:     "discovered",
	StagingInitial: "staging_initial",
	Executing:      "executing",
	CheckingFinal:  "checking_final",
	Passed:         "passed",
	Failed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown_state"
}

// Result is the outcome of one scenario run. State is Passed or Failed; on
// failure FailedIn names the phase that produced Err.
type Result struct {
	Scenario Scenario
	State    State
	FailedIn State
	Err      error
}

// Runner executes discovered scenarios one at a time against an isolated
// working directory supplied by the caller.
type Runner struct {
	cfg   Config
	logic Func
}

// NewRunner builds a Runner for the given configuration and scenario logic.
func NewRunner(cfg Config, logic Func) *Runner {
	return &Runner{cfg: cfg.normalized(), logic: logic}
}

// Run drives one scenario through staging, execution and final-state
// checking. workDir must be an empty (or deliberately pre-populated)
// isolated directory that is also the process working directory; the
// Runner never changes directories itself. Failures are scoped to this
// scenario.
func (r *Runner) Run(ctx context.Context, s Scenario, workDir string) Result {
	log := plog.Scenario(s.Name)

	// A fixture that is itself an archive is exposed as a directory for the
	// whole run of this scenario.
	fixtureDir := s.FixturePath
	if archive.IsArchive(s.FixturePath) {
		extracted, cleanup, err := archive.Extract(s.FixturePath)
		if err != nil {
			return failure(s, StagingInitial, err)
		}
		defer cleanup()
		fixtureDir = extracted
	}

	log.Info("staging initial state")
	if err := r.stageInitial(ctx, fixtureDir, workDir); err != nil {
		return failure(s, StagingInitial, err)
	}

	log.Info("executing scenario logic")
	if err := r.logic(s.Name, s.FixturePath); err != nil {
		return failure(s, Executing, &ExecutionError{Scenario: s.Name, Err: err})
	}

	log.Info("checking final state", "strategy", r.cfg.Strategy.String())
	if err := r.checkFinal(fixtureDir, workDir); err != nil {
		return failure(s, CheckingFinal, err)
	}

	return Result{Scenario: s, State: Passed}
}

func failure(s Scenario, phase State, err error) Result {
	return Result{Scenario: s, State: Failed, FailedIn: phase, Err: err}
}

// stageInitial merges the fixture's initial state into workDir. A missing
// initial state entry is tolerated unless the configuration requires one;
// staging is simply skipped and the working directory stays as it is.
func (r *Runner) stageInitial(ctx context.Context, fixtureDir, workDir string) error {
	statePath, err := resolveState(fixtureDir, r.cfg.InitialStateName)
	if err != nil {
		var missing *MissingStateError
		if errors.As(err, &missing) && !r.cfg.RequireInitialState {
			return nil
		}
		return err
	}

	if archive.IsArchive(statePath) {
		extracted, cleanup, err := archive.Extract(statePath)
		if err != nil {
			return err
		}
		defer cleanup()
		statePath = extracted
	}
	return pathcopy.CopyTree(ctx, statePath, workDir)
}

// checkFinal verifies workDir against the fixture's final state using the
// configured strategy. The working directory is the actual side of the
// comparison; when extra final items are allowed only that side may carry
// entries the final state does not list.
func (r *Runner) checkFinal(fixtureDir, workDir string) error {
	if r.cfg.Strategy == NoCheck {
		return nil
	}

	statePath, err := resolveState(fixtureDir, r.cfg.FinalStateName)
	if err != nil {
		var missing *MissingStateError
		if errors.As(err, &missing) && r.cfg.AllowMissingFinalState {
			return nil
		}
		return err
	}

	if archive.IsArchive(statePath) {
		extracted, cleanup, err := archive.Extract(statePath)
		if err != nil {
			return err
		}
		defer cleanup()
		statePath = extracted
	}

	opts := pathcmp.DefaultOptions()
	if r.cfg.AllowExtraFinal {
		opts.ExpectedComplete = false
	}
	switch r.cfg.Strategy {
	case NamesOnly:
		return pathcmp.FileNames(statePath, workDir, opts)
	default:
		return pathcmp.Equal(statePath, workDir, opts)
	}
}
