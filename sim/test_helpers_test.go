package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSimulator() *Simulator {
	return NewSimulator(NewSimulationKey(1))
}

// runTo runs s up to horizon and fails the test on a fatal error.
func runTo(t *testing.T, s *Simulator, horizon float64) {
	t.Helper()
	require.NoError(t, s.RunUntil(context.Background(), horizon))
}
