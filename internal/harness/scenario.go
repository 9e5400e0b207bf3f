package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mulderive/internal/compiler"
)

// Scenario defines a conformance scenario: a set of declarations, the
// operators to expand, and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Sources lists declaration files. Relative paths are resolved against
	// the scenario file by LoadScenario.
	Sources []string `yaml:"sources,omitempty"`

	// Inline holds declarations embedded in the scenario.
	Inline []InlineSource `yaml:"inline,omitempty"`

	// Operators restricts expansion to the named operators. Empty means
	// every derived operator.
	Operators []string `yaml:"operators,omitempty"`

	// Flavor is "std" (default) or "core".
	Flavor string `yaml:"flavor,omitempty"`

	// RunID fixes the cache run id. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// InlineSource is a declaration file embedded in a scenario.
type InlineSource struct {
	// Name selects the front end by extension (.rs, .cue, .yaml, .yml).
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Assertion checks one property of a scenario outcome.
type Assertion struct {
	Type string `yaml:"type"`

	// Record and Operator select an outcome (expands, rejects, contains).
	Record   string `yaml:"record,omitempty"`
	Operator string `yaml:"operator,omitempty"`

	// Reason is matched against the shape error reason (rejects).
	Reason string `yaml:"reason,omitempty"`

	// Count is the expected number of implementations (count).
	Count int `yaml:"count,omitempty"`

	// Text lists substrings the rendered implementation must contain (contains).
	Text []string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertExpands  = "expands"
	AssertRejects  = "rejects"
	AssertCount    = "count"
	AssertContains = "contains"
)

// LoadScenario reads a scenario file, resolving source paths relative to
// the file's directory. Unknown fields are rejected so typos surface early.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, src := range scenario.Sources {
		if !filepath.IsAbs(src) {
			scenario.Sources[i] = filepath.Join(base, src)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Sources) == 0 && len(s.Inline) == 0 {
		return fmt.Errorf("at least one of sources or inline is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if _, err := parseFlavor(s.Flavor); err != nil {
		return err
	}

	for _, src := range s.Sources {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", src)
		}
	}
	for i, in := range s.Inline {
		if !compiler.IsSource(in.Name) {
			return fmt.Errorf("inline[%d]: name %q has no supported extension", i, in.Name)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertExpands, AssertRejects:
		if a.Record == "" || a.Operator == "" {
			return fmt.Errorf("assertions[%d]: record and operator are required for %s", index, a.Type)
		}
	case AssertContains:
		if a.Record == "" || a.Operator == "" {
			return fmt.Errorf("assertions[%d]: record and operator are required for contains", index)
		}
		if len(a.Text) == 0 {
			return fmt.Errorf("assertions[%d]: text is required for contains", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
