// Package analytics records local usage statistics for supertask commands in
// an SQLite database. Nothing leaves the machine.
package analytics

import "os"

// Event is one recorded command invocation
type Event struct {
	ID         int64
	Timestamp  int64
	Command    string
	Surface    string // "cli", "menu" or "tui"
	Success    bool
	DurationMs int64
	ErrorType  string
	Flags      string // JSON array of flag names
}

// CommandSummary aggregates the events recorded for one command
type CommandSummary struct {
	Command       string  `json:"command"`
	Count         int     `json:"count"`
	Failures      int     `json:"failures"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// EnvEnabled overrides analytics.enabled from the config file
const EnvEnabled = "SUPERTASK_ANALYTICS_ENABLED"

// IsEnabledFromEnv returns the effective enabled state. A non-empty
// SUPERTASK_ANALYTICS_ENABLED wins over the config value.
func IsEnabledFromEnv(configEnabled bool) bool {
	envVal := os.Getenv(EnvEnabled)
	if envVal == "" {
		return configEnabled
	}
	return envVal == "true" || envVal == "1"
}
