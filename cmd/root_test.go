package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linac-sim/linac-sim/sim/facility"
	"github.com/linac-sim/linac-sim/sim/trace"
)

// setRunFlags sets run flags as if given on the command line and restores
// their defaults when the test ends.
func setRunFlags(t *testing.T, values map[string]string) {
	t.Helper()
	t.Cleanup(func() {
		runCmd.Flags().VisitAll(func(f *pflag.Flag) {
			if !f.Changed {
				return
			}
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				defaults := make([]string, 0, len(facility.DefaultConfig().DurationWeights))
				for _, w := range facility.DefaultConfig().DurationWeights {
					defaults = append(defaults, strconv.FormatFloat(w, 'f', -1, 64))
				}
				_ = sv.Replace(defaults)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	})
	for name, value := range values {
		require.NoError(t, runCmd.Flags().Set(name, value), "flag --%s", name)
	}
}

func TestBuildConfig_DefaultsWithoutFlags(t *testing.T) {
	setRunFlags(t, nil)

	cfg, err := buildConfig(runCmd)

	require.NoError(t, err)
	assert.Equal(t, facility.DefaultConfig(), cfg)
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	// GIVEN a scenario file and two flags
	path := filepath.Join(t.TempDir(), "center.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: 2\nweekly_patients: 30\nseed: 9\n"), 0o644))
	setRunFlags(t, map[string]string{
		"config":          path,
		"weekly-patients": "25",
		"policy":          "immediate-bypass",
	})

	// WHEN the configuration is built
	cfg, err := buildConfig(runCmd)

	// THEN flags win over the file and the file wins over defaults
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Units)
	assert.Equal(t, 25, cfg.WeeklyPatients)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, facility.PolicyImmediateBypass, cfg.Policy)
	assert.Equal(t, facility.DefaultConfig().HoursPerDay, cfg.HoursPerDay)
}

func TestBuildConfig_DisruptionFlags(t *testing.T) {
	setRunFlags(t, map[string]string{
		"closure":          "false",
		"breakdown-hours":  "0",
		"penalty-days":     "3",
		"duration-weights": "1,1,1,1,1,0",
		"horizon-weeks":    "52",
	})

	cfg, err := buildConfig(runCmd)

	require.NoError(t, err)
	assert.False(t, cfg.ClosureEnabled)
	assert.Zero(t, cfg.BreakdownHours)
	assert.Equal(t, 3, cfg.PenaltyDays)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 0}, cfg.DurationWeights)
	assert.Equal(t, 52, cfg.HorizonWeeks)
}

func TestBuildConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
	}{
		{"zero units", map[string]string{"units": "0"}},
		{"unknown policy", map[string]string{"policy": "shortest-first"}},
		{"breakdown longer than a day", map[string]string{"breakdown-hours": "12"}},
		{"negative referrals", map[string]string{"weekly-patients": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRunFlags(t, tt.flags)

			_, err := buildConfig(runCmd)

			assert.True(t, errors.Is(err, facility.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestBuildConfig_UnknownKeyInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "center.yaml")
	require.NoError(t, os.WriteFile(path, []byte("linacs: 4\n"), 0o644))
	setRunFlags(t, map[string]string{"config": path})

	_, err := buildConfig(runCmd)

	assert.Error(t, err)
}

func TestRunScenario_PrintsSummary(t *testing.T) {
	cfg := facility.DefaultConfig()
	cfg.HorizonWeeks = 4
	var buf bytes.Buffer

	result, err := runScenario(context.Background(), cfg, trace.TraceConfig{Level: trace.TraceLevelDecisions}, &buf)

	require.NoError(t, err)
	assert.Equal(t, 100, result.PatientsGenerated)
	assert.Contains(t, buf.String(), "=== Simulation Results (4 weeks, backlog-only) ===")
	assert.Contains(t, buf.String(), "Admissions (trace)")
}

func TestWriteOutputs(t *testing.T) {
	// GIVEN a finished short run
	cfg := facility.DefaultConfig()
	cfg.HorizonWeeks = 2
	result, err := facility.Run(context.Background(), cfg)
	require.NoError(t, err)
	dir := t.TempDir()
	resultsFile := filepath.Join(dir, "results.json")
	metricsFile := filepath.Join(dir, "linac.prom")

	// WHEN outputs are written
	require.NoError(t, writeOutputs(result, resultsFile, metricsFile))

	// THEN both files exist with the run's data
	data, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), result.RunKey.String())
	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `linac_sim_patients{outcome="generated"} 60`)
}

func TestWriteOutputs_NothingRequested(t *testing.T) {
	assert.NoError(t, writeOutputs(&facility.Result{}, "", ""))
}

func TestExtendedPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"results.json", "results.extended.json"},
		{"out/run.json", "out/run.extended.json"},
		{"results", "results.extended"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extendedPath(tt.in))
	}
}
