package facility

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linac-sim/linac-sim/sim/trace"
)

func TestRunKey_StableAndConfigSensitive(t *testing.T) {
	cfg := DefaultConfig()

	a, err := RunKey(cfg)
	require.NoError(t, err)
	b, err := RunKey(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, uuid.Version(5), a.Version())

	cfg.WeeklyPatients++
	c, err := RunKey(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestResult_WaitStatistics(t *testing.T) {
	r := &Result{WaitTimes: []float64{0, 0, 5, 10, 35}}

	assert.InDelta(t, 10.0, r.MeanWait(), 1e-12)
	assert.Equal(t, 35.0, r.MaxWait())
	assert.Equal(t, 5.0, r.WaitPercentile(50))
}

func TestResult_Print(t *testing.T) {
	r := &Result{
		Config:            DefaultConfig(),
		TotalSlots:        160,
		PatientsGenerated: 540,
		PatientsStarted:   530,
		WaitTimes:         []float64{0, 2, 4},
		Interruptions:     12,
		PenaltyDaysAdded:  12,
		Trace: &trace.TraceSummary{
			CauseDistribution: map[string]int{"closure": 9, "breakdown unit 0": 3},
		},
	}
	var buf bytes.Buffer

	r.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Simulation Results (26 weeks, backlog-only) ===")
	assert.Contains(t, out, "Patients Generated   : 540")
	assert.Contains(t, out, "Average Wait         : 2.00 days")
	assert.Contains(t, out, "Maximum Wait         : 4.00 days")
	assert.Contains(t, out, "Interruptions        : 12 (12 penalty days, 0 skipped)")
	assert.NotContains(t, out, "Pending Admission")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("breakdown unit 0")), bytes.Index(buf.Bytes(), []byte("closure")),
		"causes are printed in sorted order")
}

func TestResult_PrintWithoutAdmissions(t *testing.T) {
	var buf bytes.Buffer

	(&Result{Config: DefaultConfig()}).Print(&buf)

	assert.Contains(t, buf.String(), "No patients were admitted")
}

func TestResult_SaveJSON(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r, err := Run(ctx, DefaultConfig())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, r.SaveJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.RunKey, decoded.RunKey)
	assert.Equal(t, r.PatientsGenerated, decoded.PatientsGenerated)
	assert.Equal(t, r.Config, decoded.Config)
	assert.Len(t, decoded.BacklogSeries, len(r.BacklogSeries))
	assert.Nil(t, decoded.Trace, "trace summary omitted when tracing is off")
}
