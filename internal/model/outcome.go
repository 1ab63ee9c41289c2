package model

// Impact is the severity axe assigns to a violation.
type Impact string

// Impact levels, least to most severe.
const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// impactRank orders impacts for policy checks. Unknown impacts rank as minor.
var impactRank = map[Impact]int{
	ImpactMinor:    0,
	ImpactModerate: 1,
	ImpactSerious:  2,
	ImpactCritical: 3,
}

// AtLeast reports whether i is as severe as threshold.
func (i Impact) AtLeast(threshold Impact) bool {
	return impactRank[i] >= impactRank[threshold]
}

// NormalizeImpact maps an arbitrary impact string from the rules library
// onto a known level.
func NormalizeImpact(value string) Impact {
	impact := Impact(value)
	if _, ok := impactRank[impact]; ok {
		return impact
	}

	return ImpactMinor
}

// ViolationNode locates one affected DOM element.
type ViolationNode struct {
	// Target is the CSS selector path to the element.
	Target string `json:"target"`
	// HTML is the offending element's outer HTML snippet.
	HTML string `json:"html,omitempty"`
	// FailureSummary is axe's explanation of what to fix.
	FailureSummary string `json:"failure_summary,omitempty"`
}

// Violation is a single accessibility rule failure reported against
// specific DOM locations.
type Violation struct {
	RuleID  string          `json:"rule_id"`
	Impact  Impact          `json:"impact"`
	Help    string          `json:"help"`
	HelpURL string          `json:"help_url,omitempty"`
	Nodes   []ViolationNode `json:"nodes,omitempty"`
}

// EvaluationResult is the normalized output of one axe run against a
// rendered document.
type EvaluationResult struct {
	Violations []Violation `json:"violations"`
	Incomplete []Violation `json:"incomplete"`

	Passes       int `json:"passes"`
	Inapplicable int `json:"inapplicable"`

	// Rule IDs per bucket, for the report's tests-executed section.
	PassedRules       []string `json:"passed_rules,omitempty"`
	InapplicableRules []string `json:"inapplicable_rules,omitempty"`
}

// OutcomeKind discriminates the ScanOutcome variants.
type OutcomeKind string

// Outcome kinds. Exactly one per document.
const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeTimedOut  OutcomeKind = "timed_out"
)

// ScanOutcome is the per-document result of the scan pipeline.
// Completed carries the evaluation result; Failed carries the error
// kind and message; TimedOut carries neither.
type ScanOutcome struct {
	Kind OutcomeKind `json:"kind"`

	Result *EvaluationResult `json:"result,omitempty"`

	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// DurationMs is how long the render+evaluate step took.
	DurationMs int64 `json:"duration_ms"`

	// Waived counts violations excluded from the verdict by waivers.
	Waived int `json:"waived,omitempty"`
}

// CompletedOutcome builds a Completed outcome around a normalized result.
func CompletedOutcome(result EvaluationResult) ScanOutcome {
	return ScanOutcome{Kind: OutcomeCompleted, Result: &result}
}

// FailedOutcome builds a Failed outcome from an error kind and message.
func FailedOutcome(kind, message string) ScanOutcome {
	return ScanOutcome{Kind: OutcomeFailed, ErrorKind: kind, ErrorMessage: message}
}

// TimedOutOutcome builds a TimedOut outcome.
func TimedOutOutcome() ScanOutcome {
	return ScanOutcome{Kind: OutcomeTimedOut}
}

// ViolationCount returns the number of violations, zero for
// non-completed outcomes.
func (o ScanOutcome) ViolationCount() int {
	if o.Kind != OutcomeCompleted || o.Result == nil {
		return 0
	}

	return len(o.Result.Violations)
}

// MaxImpact returns the most severe impact among the outcome's
// violations and whether any violation exists.
func (o ScanOutcome) MaxImpact() (Impact, bool) {
	if o.Kind != OutcomeCompleted || o.Result == nil || len(o.Result.Violations) == 0 {
		return "", false
	}

	max := o.Result.Violations[0].Impact
	for _, v := range o.Result.Violations[1:] {
		if v.Impact.AtLeast(max) {
			max = v.Impact
		}
	}

	return max, true
}
