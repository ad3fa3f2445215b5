// Package convertcheck runs conversion cases against a running server and
// verifies the responses.
package convertcheck

import (
	"io"
	"time"
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL   string        // Base URL of the service
	CasesFile string        // YAML case file; empty runs DefaultCases
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Repeat    int           // Requests per case; all responses must match
	Verbose   bool          // Log every case
	Out       io.Writer     // Summary output; nil discards it
}

// Case is a single request and its expected response.
type Case struct {
	Name       string      `yaml:"name"`
	Amount     string      `yaml:"amount"`
	FromUnit   string      `yaml:"from_unit"`
	ToUnit     string      `yaml:"to_unit"`
	Ingredient string      `yaml:"ingredient"`
	Expect     Expectation `yaml:"expect"`
}

// Expectation describes the response a case must produce.
type Expectation struct {
	Status         int      `yaml:"status"`
	ConvertedValue *float64 `yaml:"converted_value"`
	Unit           string   `yaml:"unit"`
	Error          string   `yaml:"error"`
}

// Result is the verdict for one case.
type Result struct {
	Case     Case
	Passed   bool
	Reason   string
	Requests int
}

// Stats holds run statistics.
type Stats struct {
	RunID     string
	Cases     int
	Passed    int
	Failed    int
	Requests  int
	Results   []Result
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
