package facility

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Breakdowns and closures log at info level every simulated week.
	// Set DEBUG_TESTS=1 to see them: DEBUG_TESTS=1 go test ./sim/facility/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}
