package facility

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DaysPerWeek is the number of working days in a week.
	DaysPerWeek = 5
	// DurationBuckets is the number of treatment-length buckets (1..6 weeks).
	DurationBuckets = 6
)

// Policy selects how new patients are admitted.
type Policy string

const (
	// PolicyBacklogOnly appends every new patient to the backlog; the
	// treatment scheduler is the only admission point.
	PolicyBacklogOnly Policy = "backlog-only"
	// PolicyImmediateBypass starts a course straight away when a slot is
	// free and backlogs the rest.
	PolicyImmediateBypass Policy = "immediate-bypass"
)

// validPolicies maps accepted policy names.
var validPolicies = map[Policy]bool{
	PolicyBacklogOnly:     true,
	PolicyImmediateBypass: true,
}

// IsValidPolicy returns true if name is a recognized admission policy.
func IsValidPolicy(name string) bool {
	return validPolicies[Policy(name)]
}

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config is the validated input of a simulation run.
// Loaded from YAML via LoadConfig(path) or built from DefaultConfig().
type Config struct {
	// Units is the number of treatment units (linacs).
	Units int `yaml:"units" json:"units"`
	// SessionsPerHour is the number of patients one unit treats per hour.
	SessionsPerHour int `yaml:"sessions_per_hour" json:"sessions_per_hour"`
	// HoursPerDay is the length of a treatment day.
	HoursPerDay int `yaml:"hours_per_day" json:"hours_per_day"`
	// WeeklyPatients is the number of new referrals per working week.
	WeeklyPatients int `yaml:"weekly_patients" json:"weekly_patients"`
	// BreakdownHours is how long a unit is down per weekly breakdown; 0 disables breakdowns.
	BreakdownHours float64 `yaml:"breakdown_hours" json:"breakdown_hours"`
	HorizonWeeks   int     `yaml:"horizon_weeks" json:"horizon_weeks"`
	// DurationWeights are relative weights for treatment lengths of 1..6 weeks.
	// They need not sum to 100 and are normalized internally.
	DurationWeights   []float64 `yaml:"duration_weights" json:"duration_weights"`
	Policy            Policy    `yaml:"policy" json:"policy"`
	ClosureEnabled    bool      `yaml:"closure_enabled" json:"closure_enabled"`
	ClosurePeriodDays int       `yaml:"closure_period_days" json:"closure_period_days"`
	// PenaltyDays is added to a course's remaining time per interruption.
	PenaltyDays int   `yaml:"penalty_days" json:"penalty_days"`
	Seed        int64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the reference scenario: 4 linacs, 10-hour days, 4
// sessions per hour, 20 new patients a week for 26 weeks.
func DefaultConfig() Config {
	return Config{
		Units:             4,
		SessionsPerHour:   4,
		HoursPerDay:       10,
		WeeklyPatients:    20,
		BreakdownHours:    2,
		HorizonWeeks:      26,
		DurationWeights:   []float64{1, 1, 1, 1, 1, 1},
		Policy:            PolicyBacklogOnly,
		ClosureEnabled:    true,
		ClosurePeriodDays: 4 * DaysPerWeek,
		PenaltyDays:       1,
		Seed:              42,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
// Unknown keys are rejected so typos surface as errors.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field once, before any event is scheduled.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"units", c.Units},
		{"sessions_per_hour", c.SessionsPerHour},
		{"hours_per_day", c.HoursPerDay},
		{"horizon_weeks", c.HorizonWeeks},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ConfigError{Field: p.field, Reason: fmt.Sprintf("must be > 0, got %d", p.value)}
		}
	}
	if c.WeeklyPatients < 0 {
		return &ConfigError{Field: "weekly_patients", Reason: fmt.Sprintf("must be >= 0, got %d", c.WeeklyPatients)}
	}
	if c.BreakdownHours < 0 || math.IsNaN(c.BreakdownHours) || math.IsInf(c.BreakdownHours, 0) {
		return &ConfigError{Field: "breakdown_hours", Reason: fmt.Sprintf("must be a finite value >= 0, got %v", c.BreakdownHours)}
	}
	if c.BreakdownHours > float64(c.HoursPerDay) {
		return &ConfigError{Field: "breakdown_hours", Reason: fmt.Sprintf("%v exceeds hours_per_day %d", c.BreakdownHours, c.HoursPerDay)}
	}
	if n := len(c.DurationWeights); n != 0 && n != DurationBuckets {
		return &ConfigError{Field: "duration_weights", Reason: fmt.Sprintf("need %d weights, got %d", DurationBuckets, n)}
	}
	for i, w := range c.DurationWeights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return &ConfigError{Field: "duration_weights", Reason: fmt.Sprintf("weight %d must be a finite value >= 0, got %v", i, w)}
		}
	}
	if !validPolicies[c.Policy] {
		return &ConfigError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q (want %q or %q)", c.Policy, PolicyBacklogOnly, PolicyImmediateBypass)}
	}
	if c.ClosureEnabled && c.ClosurePeriodDays <= 0 {
		return &ConfigError{Field: "closure_period_days", Reason: fmt.Sprintf("must be > 0 when closures are enabled, got %d", c.ClosurePeriodDays)}
	}
	if c.PenaltyDays < 0 {
		return &ConfigError{Field: "penalty_days", Reason: fmt.Sprintf("must be >= 0, got %d", c.PenaltyDays)}
	}
	return nil
}

// TotalSlots is the number of concurrent treatment courses the facility can run.
func (c Config) TotalSlots() int {
	return c.Units * c.HoursPerDay * c.SessionsPerHour
}

// SessionsLostPerBreakdown is the number of courses one unit's breakdown interrupts.
func (c Config) SessionsLostPerBreakdown() int {
	return int(math.Floor(c.BreakdownHours * float64(c.SessionsPerHour)))
}

// HorizonDays is the simulated horizon in working days.
func (c Config) HorizonDays() float64 {
	return float64(c.HorizonWeeks * DaysPerWeek)
}

// NormalizedWeights returns the duration weights scaled to sum to 1. Missing
// or all-zero weights fall back to a uniform distribution.
func (c Config) NormalizedWeights() []float64 {
	out := make([]float64, DurationBuckets)
	sum := 0.0
	for _, w := range c.DurationWeights {
		sum += w
	}
	if len(c.DurationWeights) != DurationBuckets || sum == 0 {
		if len(c.DurationWeights) == DurationBuckets {
			logrus.Warnf("all duration weights are zero; falling back to uniform")
		}
		for i := range out {
			out[i] = 1.0 / DurationBuckets
		}
		return out
	}
	for i, w := range c.DurationWeights {
		out[i] = w / sum
	}
	return out
}
