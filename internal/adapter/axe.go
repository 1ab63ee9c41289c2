package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// RuleEvaluator runs the accessibility rules library against a rendered
// document and normalizes its result.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, exec ScriptExecutor) (m.EvaluationResult, error)
}

// axeRunExpression invokes the library's entry point. The promise is
// awaited by the executor.
const axeRunExpression = "axe.run(document)"

// defaultAxeScriptCandidates are probed in order when no script path is
// configured.
var defaultAxeScriptCandidates = []string{
	filepath.Join("node_modules", "axe-core", "axe.min.js"),
	"/usr/local/lib/node_modules/axe-core/axe.min.js",
	"/usr/lib/node_modules/axe-core/axe.min.js",
}

// AxeEvaluator injects the axe-core source into the page and invokes
// axe.run, converting the library's native shape into the typed
// EvaluationResult. Anything malformed becomes an evaluation error for
// the one document, never a run failure.
type AxeEvaluator struct {
	script string
}

// NewAxeEvaluator loads the axe-core script blob from scriptPath, or
// from the default locations when scriptPath is empty.
func NewAxeEvaluator(scriptPath string) (*AxeEvaluator, error) {
	candidates := defaultAxeScriptCandidates
	if scriptPath != "" {
		candidates = []string{scriptPath}
	}

	for _, candidate := range candidates {
		content, err := os.ReadFile(candidate)
		if err == nil && len(content) > 0 {
			return &AxeEvaluator{script: string(content)}, nil
		}
	}

	return nil, fmt.Errorf("axe-core script not found (tried %v)", candidates)
}

// NewAxeEvaluatorFromSource wires an evaluator around an in-memory
// script blob.
func NewAxeEvaluatorFromSource(script string) *AxeEvaluator {
	return &AxeEvaluator{script: script}
}

// axeRawResult mirrors the subset of axe's result object the scanner
// consumes. Pointer slices distinguish an absent bucket from an empty
// one, so a malformed result is rejected instead of read as clean.
type axeRawResult struct {
	Violations   *[]axeRawRule `json:"violations"`
	Incomplete   *[]axeRawRule `json:"incomplete"`
	Passes       *[]axeRawRule `json:"passes"`
	Inapplicable *[]axeRawRule `json:"inapplicable"`
}

type axeRawRule struct {
	ID      string       `json:"id"`
	Impact  string       `json:"impact"`
	Help    string       `json:"help"`
	HelpURL string       `json:"helpUrl"`
	Nodes   []axeRawNode `json:"nodes"`
}

type axeRawNode struct {
	Target         []string `json:"target"`
	HTML           string   `json:"html"`
	FailureSummary string   `json:"failureSummary"`
}

// Evaluate implements RuleEvaluator.
func (e *AxeEvaluator) Evaluate(ctx context.Context, exec ScriptExecutor) (m.EvaluationResult, error) {
	if err := exec.Inject(ctx, e.script); err != nil {
		return m.EvaluationResult{}, err
	}

	var raw axeRawResult
	if err := exec.Evaluate(ctx, axeRunExpression, &raw); err != nil {
		return m.EvaluationResult{}, err
	}

	return normalizeAxeResult(raw)
}

// normalizeAxeResult validates the dynamic result shape and produces the
// typed model. Violations and passes buckets are required; a result
// missing them did not come from a successful axe run.
func normalizeAxeResult(raw axeRawResult) (m.EvaluationResult, error) {
	if raw.Violations == nil || raw.Passes == nil {
		return m.EvaluationResult{}, m.EvaluationErrorf("rules library returned no result")
	}

	result := m.EvaluationResult{
		Violations: normalizeRules(*raw.Violations),
		Passes:     len(*raw.Passes),
	}

	if raw.Incomplete != nil {
		result.Incomplete = normalizeRules(*raw.Incomplete)
	}

	result.PassedRules = ruleIDs(*raw.Passes)

	if raw.Inapplicable != nil {
		result.Inapplicable = len(*raw.Inapplicable)
		result.InapplicableRules = ruleIDs(*raw.Inapplicable)
	}

	return result, nil
}

func normalizeRules(rules []axeRawRule) []m.Violation {
	violations := make([]m.Violation, 0, len(rules))

	for _, rule := range rules {
		violation := m.Violation{
			RuleID:  rule.ID,
			Impact:  m.NormalizeImpact(rule.Impact),
			Help:    rule.Help,
			HelpURL: rule.HelpURL,
		}

		for _, node := range rule.Nodes {
			target := ""
			if len(node.Target) > 0 {
				target = node.Target[0]
			}

			violation.Nodes = append(violation.Nodes, m.ViolationNode{
				Target:         target,
				HTML:           node.HTML,
				FailureSummary: node.FailureSummary,
			})
		}

		violations = append(violations, violation)
	}

	return violations
}

func ruleIDs(rules []axeRawRule) []string {
	if len(rules) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
	}

	sort.Strings(ids)

	return ids
}
