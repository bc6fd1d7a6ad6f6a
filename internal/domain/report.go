package domain

import "time"

// CheckStatus is the outcome of a single conformance check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// CheckResult records one executed check.
type CheckResult struct {
	Suite    string        `json:"suite" yaml:"suite"`
	Check    string        `json:"check" yaml:"check"`
	Status   CheckStatus   `json:"status" yaml:"status"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// ScenarioReport collects the results of one chain scenario.
type ScenarioReport struct {
	Scenario ChainScenario `json:"scenario" yaml:"scenario"`
	Results  []CheckResult `json:"results" yaml:"results"`
}

// RunReport is the output of a full harness run.
type RunReport struct {
	RunID     string           `json:"runId" yaml:"runId"`
	StartedAt time.Time        `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
	Scenarios []ScenarioReport `json:"scenarios" yaml:"scenarios"`
}

// Summary counts results by status.
type Summary struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Total returns the number of checks.
func (s Summary) Total() int { return s.Passed + s.Failed + s.Skipped }

// Summary aggregates every scenario.
func (r *RunReport) Summary() Summary {
	var s Summary
	for _, sc := range r.Scenarios {
		for _, res := range sc.Results {
			switch res.Status {
			case CheckPassed:
				s.Passed++
			case CheckFailed:
				s.Failed++
			case CheckSkipped:
				s.Skipped++
			}
		}
	}
	return s
}

// Failed reports whether any check failed.
func (r *RunReport) Failed() bool {
	return r.Summary().Failed > 0
}
