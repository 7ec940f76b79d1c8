// Package testutil provides shared test infrastructure for the linac-sim
// packages: the scenario fixtures under testdata/ and assertion helpers.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"
)

// ScenarioSet represents the structure of testdata/scenarios.yaml.
type ScenarioSet struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one named configuration. Config holds the raw YAML node so
// each package decodes it with its own strict loader.
type Scenario struct {
	Name   string    `yaml:"name"`
	Config yaml.Node `yaml:"config"`
}

// ConfigYAML re-encodes the scenario's config block.
func (s Scenario) ConfigYAML(t *testing.T) []byte {
	t.Helper()
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		t.Fatalf("Failed to encode scenario %s: %v", s.Name, err)
	}
	return data
}

// LoadScenarios loads the scenario fixtures from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarios(t *testing.T) *ScenarioSet {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenarios: %v", err)
	}

	var set ScenarioSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		t.Fatalf("Failed to parse scenarios: %v", err)
	}
	if len(set.Scenarios) == 0 {
		t.Fatal("scenarios.yaml has no scenarios")
	}
	return &set
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNonDecreasing fails if values ever decrease.
func AssertNonDecreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	if !sort.Float64sAreSorted(values) {
		for i := 1; i < len(values); i++ {
			if values[i] < values[i-1] {
				t.Errorf("%s: value %d (%v) is below value %d (%v)", name, i, values[i], i-1, values[i-1])
				return
			}
		}
	}
}
