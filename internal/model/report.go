package model

import "time"

// Verdict is the run's overall pass/fail determination.
type Verdict string

// Verdict values.
const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// VerdictPolicy configures which outcomes fail a run.
type VerdictPolicy string

const (
	// PolicyStrict fails on any violation and on any Failed or TimedOut
	// document.
	PolicyStrict VerdictPolicy = "any"

	// PolicyLenient fails only on serious or critical violations.
	// Failed and TimedOut documents still fail the run: their compliance
	// is unknown.
	PolicyLenient VerdictPolicy = "serious"
)

// ParseVerdictPolicy maps a config value to a policy, defaulting to strict.
func ParseVerdictPolicy(value string) VerdictPolicy {
	if VerdictPolicy(value) == PolicyLenient {
		return PolicyLenient
	}

	return PolicyStrict
}

// DocumentResult pairs one scanned document with its outcome.
type DocumentResult struct {
	Path    Path        `json:"path"`
	Outcome ScanOutcome `json:"outcome"`
}

// SelectionInfo records how the work-set was chosen, so a diff-tool
// failure is distinguishable from a genuinely empty diff.
type SelectionInfo struct {
	RequestedMode ScanMode `json:"requested_mode"`
	EffectiveMode ScanMode `json:"effective_mode"`

	FellBack       bool   `json:"fell_back,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	Truncated bool `json:"truncated,omitempty"`
}

// Summary holds the aggregate counts of a run.
type Summary struct {
	Documents int `json:"documents"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`

	Violations int `json:"violations"`
	Incomplete int `json:"incomplete"`
	Passes     int `json:"passes"`
	Waived     int `json:"waived,omitempty"`
}

// RunReport is the aggregate result of one scan run. It is appended to
// by the pipeline in scan order and immutable once finalized.
type RunReport struct {
	Repo      string        `json:"repo,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Selection SelectionInfo `json:"selection"`

	Documents []DocumentResult `json:"documents"`
	Summary   Summary          `json:"summary"`
	Verdict   Verdict          `json:"verdict"`
}

// Passed reports whether the run verdict is a pass.
func (r *RunReport) Passed() bool {
	return r.Verdict == VerdictPass
}
