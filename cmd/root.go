package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linac-sim/linac-sim/sim/facility"
	"github.com/linac-sim/linac-sim/sim/trace"
)

var (
	// Input files and outputs
	configPath      string // YAML scenario file; flags override its values
	logLevel        string // Log verbosity level
	resultsPath     string // File to save results JSON
	metricsTextfile string // File to write Prometheus text-format metrics
	traceLevel      string // Decision trace level
	extendedWeeks   int    // Horizon of an optional second run with the same seed

	// Facility and workload overrides
	seed              int64     // Seed for patient generation and breakdowns
	units             int       // Number of treatment units
	sessionsPerHour   int       // Patients treated per unit per hour
	hoursPerDay       int       // Length of a treatment day
	weeklyPatients    int       // New referrals per working week
	breakdownHours    float64   // Downtime per unit breakdown
	horizonWeeks      int       // Simulated weeks
	durationWeights   []float64 // Relative weights for 1..6 week courses
	policy            string    // Admission policy
	closureEnabled    bool      // Whether the facility closes periodically
	closurePeriodDays int       // Working days between closures
	penaltyDays       int       // Days added to a course per interruption
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "linac-sim",
	Short: "Discrete-event simulator for radiotherapy patient flow",
}

// runCmd executes the simulation using the scenario file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the patient-flow simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, decisions", traceLevel)
		}
		if extendedWeeks < 0 {
			logrus.Fatalf("--extended-weeks must be >= 0, got %d", extendedWeeks)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Rejected configuration: %v", err)
		}

		logrus.Infof("Starting simulation: %d units, %d patients/week, %d weeks, policy=%s, seed=%d",
			cfg.Units, cfg.WeeklyPatients, cfg.HorizonWeeks, cfg.Policy, cfg.Seed)
		startTime := time.Now()

		tc := trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}
		result, err := runScenario(cmd.Context(), cfg, tc, os.Stdout)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := writeOutputs(result, resultsPath, metricsTextfile); err != nil {
			logrus.Fatalf("%v", err)
		}

		if extendedWeeks > 0 {
			extended := cfg
			extended.HorizonWeeks = extendedWeeks
			logrus.Infof("Starting extended scenario: %d weeks, seed=%d", extended.HorizonWeeks, extended.Seed)
			fmt.Fprintln(os.Stdout)
			extResult, err := runScenario(cmd.Context(), extended, tc, os.Stdout)
			if err != nil {
				logrus.Fatalf("Extended simulation failed: %v", err)
			}
			if resultsPath != "" {
				if err := extResult.SaveJSON(extendedPath(resultsPath)); err != nil {
					logrus.Fatalf("%v", err)
				}
			}
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// buildConfig loads the scenario file (or the defaults) and applies every
// flag the user set explicitly.
func buildConfig(cmd *cobra.Command) (facility.Config, error) {
	cfg := facility.DefaultConfig()
	if configPath != "" {
		loaded, err := facility.LoadConfig(configPath)
		if err != nil {
			return facility.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("units") {
		cfg.Units = units
	}
	if flags.Changed("sessions-per-hour") {
		cfg.SessionsPerHour = sessionsPerHour
	}
	if flags.Changed("hours-per-day") {
		cfg.HoursPerDay = hoursPerDay
	}
	if flags.Changed("weekly-patients") {
		cfg.WeeklyPatients = weeklyPatients
	}
	if flags.Changed("breakdown-hours") {
		cfg.BreakdownHours = breakdownHours
	}
	if flags.Changed("horizon-weeks") {
		cfg.HorizonWeeks = horizonWeeks
	}
	if flags.Changed("duration-weights") {
		cfg.DurationWeights = append([]float64(nil), durationWeights...)
	}
	if flags.Changed("policy") {
		cfg.Policy = facility.Policy(policy)
	}
	if flags.Changed("closure") {
		cfg.ClosureEnabled = closureEnabled
	}
	if flags.Changed("closure-period-days") {
		cfg.ClosurePeriodDays = closurePeriodDays
	}
	if flags.Changed("penalty-days") {
		cfg.PenaltyDays = penaltyDays
	}

	if err := cfg.Validate(); err != nil {
		return facility.Config{}, err
	}
	return cfg, nil
}

// runScenario simulates cfg and prints the summary to out.
func runScenario(ctx context.Context, cfg facility.Config, tc trace.TraceConfig, out io.Writer) (*facility.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := facility.Run(ctx, cfg, facility.WithTrace(tc))
	if err != nil {
		return nil, err
	}
	result.Print(out)
	return result, nil
}

// writeOutputs saves the results JSON and the metrics textfile when their
// paths are set.
func writeOutputs(result *facility.Result, resultsPath, metricsPath string) error {
	if resultsPath != "" {
		if err := result.SaveJSON(resultsPath); err != nil {
			return err
		}
		logrus.Infof("Results written to %s", resultsPath)
	}
	if metricsPath != "" {
		exporter := facility.NewExporter()
		exporter.Observe(result)
		if err := exporter.WriteTextfile(metricsPath); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", metricsPath)
	}
	return nil
}

// extendedPath derives the results path of the extended run:
// results.json → results.extended.json.
func extendedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".extended" + ext
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := facility.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML scenario file (flags override its values)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "File to save results JSON")
	runCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "File to write Prometheus text-format metrics")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().IntVar(&extendedWeeks, "extended-weeks", 0, "Also run a second scenario of this many weeks with the same seed (0 = off)")

	// Facility configuration
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for patient generation and breakdowns")
	runCmd.Flags().IntVar(&units, "units", defaults.Units, "Number of treatment units (linacs)")
	runCmd.Flags().IntVar(&sessionsPerHour, "sessions-per-hour", defaults.SessionsPerHour, "Patients treated per unit per hour")
	runCmd.Flags().IntVar(&hoursPerDay, "hours-per-day", defaults.HoursPerDay, "Treatment day length in hours")
	runCmd.Flags().Float64Var(&breakdownHours, "breakdown-hours", defaults.BreakdownHours, "Downtime per weekly unit breakdown in hours (0 = no breakdowns)")
	runCmd.Flags().BoolVar(&closureEnabled, "closure", defaults.ClosureEnabled, "Close the facility every closure period")
	runCmd.Flags().IntVar(&closurePeriodDays, "closure-period-days", defaults.ClosurePeriodDays, "Working days between closures")
	runCmd.Flags().IntVar(&penaltyDays, "penalty-days", defaults.PenaltyDays, "Days added to a course per interruption")

	// Workload configuration
	runCmd.Flags().IntVar(&weeklyPatients, "weekly-patients", defaults.WeeklyPatients, "New referrals per working week")
	runCmd.Flags().IntVar(&horizonWeeks, "horizon-weeks", defaults.HorizonWeeks, "Simulated weeks")
	runCmd.Flags().Float64SliceVar(&durationWeights, "duration-weights", defaults.DurationWeights, "Comma-separated relative weights for 1..6 week courses")
	runCmd.Flags().StringVar(&policy, "policy", string(defaults.Policy), "Admission policy (backlog-only, immediate-bypass)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
