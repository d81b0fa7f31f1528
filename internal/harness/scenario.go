package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the script text. Exactly one of Script and ScriptFile is set.
	Script string `yaml:"script,omitempty"`

	// ScriptFile is a path to the script, relative to the scenario file.
	ScriptFile string `yaml:"script_file,omitempty"`

	// Variables seed the run.
	Variables map[string]string `yaml:"variables,omitempty"`

	// Config is decoded like a YAML config file. Empty means defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Provider installs a stub client for the configured provider kind.
	// Without it the registry's own client (if any) is used.
	Provider *ProviderStub `yaml:"provider,omitempty"`

	// RunID is the fixed run ID. Empty uses testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	Expect Expect `yaml:"expect"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ProviderStub configures testutil.Stub.
type ProviderStub struct {
	Token         string   `yaml:"token"`
	Error         string   `yaml:"error,omitempty"`
	Delay         string   `yaml:"delay,omitempty"`
	IgnoreContext bool     `yaml:"ignore_context,omitempty"`
	Balance       *float64 `yaml:"balance,omitempty"`
}

// Expect is the expected outcome of a scenario.
type Expect struct {
	// Outcome is completed, cancelled, failed or load_error.
	Outcome string `yaml:"outcome"`

	// Error is the expected error category: syntax, configuration,
	// unsupported_capability, balance or block. Empty skips the check.
	Error string `yaml:"error,omitempty"`
}

// OutcomeLoadError is the outcome of a scenario whose script failed to load.
const OutcomeLoadError = "load_error"

// Assertion validates the run log or the final variables.
type Assertion struct {
	// Type selects the assertion, see the Assert* constants.
	Type string `yaml:"type"`

	// Severity restricts log assertions to one severity.
	Severity string `yaml:"severity,omitempty"`

	// Message is a substring (log_contains).
	Message string `yaml:"message,omitempty"`

	// Messages are substrings expected in order (log_order).
	Messages []string `yaml:"messages,omitempty"`

	// Count is the expected number of entries (log_count).
	Count int `yaml:"count,omitempty"`

	// Variable and Value are used by variable and variable_unset.
	Variable string  `yaml:"variable,omitempty"`
	Value    *string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertLogContains   = "log_contains"
	AssertLogOrder      = "log_order"
	AssertLogCount      = "log_count"
	AssertVariable      = "variable"
	AssertVariableUnset = "variable_unset"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected. A relative script_file is resolved against the scenario's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ScriptFile != "" && !filepath.IsAbs(scenario.ScriptFile) {
		scenario.ScriptFile = filepath.Join(filepath.Dir(path), scenario.ScriptFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

var validOutcomes = map[string]bool{
	"completed":      true,
	"cancelled":      true,
	"failed":         true,
	OutcomeLoadError: true,
}

var validErrors = map[string]bool{
	"":                       true,
	"syntax":                 true,
	"configuration":          true,
	"unsupported_capability": true,
	"balance":                true,
	"block":                  true,
}

var validAssertions = map[string]bool{
	AssertLogContains:   true,
	AssertLogOrder:      true,
	AssertLogCount:      true,
	AssertVariable:      true,
	AssertVariableUnset: true,
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Script == "") == (s.ScriptFile == "") {
		return fmt.Errorf("exactly one of script and script_file is required")
	}
	if !validOutcomes[s.Expect.Outcome] {
		return fmt.Errorf("expect.outcome %q is not one of completed, cancelled, failed, load_error", s.Expect.Outcome)
	}
	if !validErrors[s.Expect.Error] {
		return fmt.Errorf("expect.error %q is not a known error category", s.Expect.Error)
	}
	if s.Provider != nil && s.Provider.Delay != "" {
		if _, err := time.ParseDuration(s.Provider.Delay); err != nil {
			return fmt.Errorf("provider.delay: %w", err)
		}
	}

	for i, a := range s.Assertions {
		if !validAssertions[a.Type] {
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
		switch a.Type {
		case AssertLogContains:
			if a.Message == "" {
				return fmt.Errorf("assertion %d: log_contains requires message", i)
			}
		case AssertLogOrder:
			if len(a.Messages) < 2 {
				return fmt.Errorf("assertion %d: log_order requires at least 2 messages", i)
			}
		case AssertVariable:
			if a.Variable == "" || a.Value == nil {
				return fmt.Errorf("assertion %d: variable requires variable and value", i)
			}
		case AssertVariableUnset:
			if a.Variable == "" {
				return fmt.Errorf("assertion %d: variable_unset requires variable", i)
			}
		}
	}
	return nil
}
