package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/engine"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/script"
	"github.com/roach88/lscript/internal/store"
	"github.com/roach88/lscript/internal/syntax"
	"github.com/roach88/lscript/internal/testutil"
	"github.com/roach88/lscript/internal/vars"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store with a fixed run ID
// and a stepping clock. Execution flow:
//  1. Resolve the configuration and install the stub provider
//  2. Parse the script (a failure yields outcome load_error)
//  3. Run it through the engine, recording the script-level log
//  4. Persist the run and read it back
//  5. Check the expected outcome and evaluate assertions
//
// The returned error reports problems with the scenario itself (unreadable
// script file, bad stub settings); script and run failures are part of the
// Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	src, err := scenarioScript(scenario)
	if err != nil {
		return nil, err
	}

	providers := provider.DefaultRegistry()
	result := NewResult()

	cfg, err := scenarioConfig(scenario, providers)
	if err != nil {
		result.Outcome = OutcomeLoadError
		setError(result, err)
		checkExpect(scenario, result)
		return result, nil
	}
	if scenario.Provider != nil {
		stub, err := newStub(cfg.Provider, scenario.Provider)
		if err != nil {
			return nil, err
		}
		if err := stub.Install(providers); err != nil {
			return nil, fmt.Errorf("install stub provider: %w", err)
		}
	}

	s, err := script.Parse(block.DefaultRegistry(), src)
	if err != nil {
		result.Outcome = OutcomeLoadError
		setError(result, err)
		checkExpect(scenario, result)
		return result, nil
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := scenario.RunID
	if runID == "" {
		runID = testutil.DefaultRunID
	}
	clock := testutil.NewStepClock(testutil.Epoch, time.Millisecond)
	eng := engine.New(
		engine.WithRunIDs(testutil.NewFixedRunID(runID)),
		engine.WithDispatcher(provider.NewDispatcher(providers)),
		engine.WithClock(clock.Now),
	)

	rec := execution.NewRecorder()
	ec := eng.NewContext(cfg,
		execution.WithVariables(vars.FromMap(scenario.Variables)),
		execution.WithLogger(rec),
	)

	startedAt := clock.Now()
	res, _ := eng.Run(ctx, s, ec)

	if _, err := st.WriteRun(ctx, store.Record(s, ec, res, startedAt, rec.Entries())); err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}
	run, err := st.ReadRun(ctx, res.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run back: %w", err)
	}

	result.RunID = run.ID
	result.Outcome = run.Outcome
	result.Entries = run.Entries
	result.Variables = run.Variables
	if res.Err != nil {
		setError(result, res.Err)
	}

	checkExpect(scenario, result)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// RunDir runs every scenario in dir, in file name order.
func RunDir(ctx context.Context, dir string) (map[string]*Result, []*Scenario, error) {
	scenarios, err := LoadScenarios(dir)
	if err != nil {
		return nil, nil, err
	}
	results := make(map[string]*Result, len(scenarios))
	for _, s := range scenarios {
		r, err := RunContext(ctx, s)
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		results[s.Name] = r
	}
	return results, scenarios, nil
}

func scenarioScript(s *Scenario) (string, error) {
	if s.ScriptFile == "" {
		return s.Script, nil
	}
	data, err := os.ReadFile(s.ScriptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read script file: %w", err)
	}
	return string(data), nil
}

func scenarioConfig(s *Scenario, reg *provider.Registry) (config.Config, error) {
	cfg := config.Default()
	if s.Config.Kind != 0 {
		data, err := yaml.Marshal(&s.Config)
		if err != nil {
			return config.Config{}, fmt.Errorf("config: %w", err)
		}
		if cfg, err = config.ParseYAML(data); err != nil {
			return config.Config{}, err
		}
	}
	return cfg.Resolve(reg)
}

func newStub(kind provider.Kind, ps *ProviderStub) (*testutil.Stub, error) {
	stub := testutil.NewStub(kind, ps.Token)
	stub.IgnoreContext = ps.IgnoreContext
	if ps.Error != "" {
		stub.Err = errors.New(ps.Error)
	}
	if ps.Delay != "" {
		d, err := time.ParseDuration(ps.Delay)
		if err != nil {
			return nil, fmt.Errorf("provider.delay: %w", err)
		}
		stub.Delay = d
	}
	if ps.Balance != nil {
		stub.Funds = *ps.Balance
	}
	return stub, nil
}

func setError(r *Result, err error) {
	r.Error = err.Error()
	r.ErrorCategory = Categorize(err)
}

// Categorize maps an error to one of the categories used by Expect.Error.
func Categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case syntax.IsSyntaxError(err):
		return "syntax"
	case provider.IsUnsupportedCapability(err):
		return "unsupported_capability"
	case provider.IsBalanceError(err):
		return "balance"
	case provider.IsConfigurationError(err):
		return "configuration"
	default:
		return "block"
	}
}

func checkExpect(s *Scenario, r *Result) {
	if r.Outcome != s.Expect.Outcome {
		detail := ""
		if r.Error != "" {
			detail = " (" + r.Error + ")"
		}
		r.AddError(fmt.Sprintf("outcome: expected %s, got %s%s", s.Expect.Outcome, r.Outcome, detail))
	}
	if s.Expect.Error != "" && r.ErrorCategory != s.Expect.Error {
		r.AddError(fmt.Sprintf("error: expected category %s, got %q", s.Expect.Error, r.ErrorCategory))
	}
}
