package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// scriptedExecutor replays a canned axe result without a browser.
type scriptedExecutor struct {
	injectErr   error
	evaluateErr error
	result      string

	injected string
	expr     string
}

func (e *scriptedExecutor) Inject(_ context.Context, script string) error {
	e.injected = script
	return e.injectErr
}

func (e *scriptedExecutor) Evaluate(_ context.Context, expression string, out any) error {
	e.expr = expression
	if e.evaluateErr != nil {
		return e.evaluateErr
	}

	return json.Unmarshal([]byte(e.result), out)
}

const sampleAxeResult = `{
	"violations": [
		{
			"id": "image-alt",
			"impact": "critical",
			"help": "Images must have alternate text",
			"helpUrl": "https://dequeuniversity.com/rules/axe/4.7/image-alt",
			"nodes": [
				{"target": ["img:nth-of-type(1)"], "html": "<img src=\"a.png\">", "failureSummary": "Fix: add alt"}
			]
		},
		{
			"id": "region",
			"impact": "unheard-of",
			"help": "Content should be in landmarks",
			"nodes": []
		}
	],
	"incomplete": [
		{"id": "color-contrast", "impact": "serious", "help": "Contrast may be insufficient", "nodes": []}
	],
	"passes": [
		{"id": "document-title"}, {"id": "html-has-lang"}
	],
	"inapplicable": [
		{"id": "video-caption"}
	]
}`

func TestAxeEvaluator_Normalizes(t *testing.T) {
	exec := &scriptedExecutor{result: sampleAxeResult}
	evaluator := NewAxeEvaluatorFromSource("/* axe */")

	result, err := evaluator.Evaluate(context.Background(), exec)
	require.NoError(t, err)

	assert.Equal(t, "/* axe */", exec.injected)
	assert.Equal(t, axeRunExpression, exec.expr)

	require.Len(t, result.Violations, 2)
	assert.Equal(t, "image-alt", result.Violations[0].RuleID)
	assert.Equal(t, m.ImpactCritical, result.Violations[0].Impact)
	require.Len(t, result.Violations[0].Nodes, 1)
	assert.Equal(t, "img:nth-of-type(1)", result.Violations[0].Nodes[0].Target)
	assert.Equal(t, "Fix: add alt", result.Violations[0].Nodes[0].FailureSummary)

	// Unknown impact strings collapse to minor rather than failing.
	assert.Equal(t, m.ImpactMinor, result.Violations[1].Impact)

	require.Len(t, result.Incomplete, 1)
	assert.Equal(t, m.ImpactSerious, result.Incomplete[0].Impact)

	assert.Equal(t, 2, result.Passes)
	assert.Equal(t, 1, result.Inapplicable)
	assert.Equal(t, []string{"document-title", "html-has-lang"}, result.PassedRules)
	assert.Equal(t, []string{"video-caption"}, result.InapplicableRules)
}

func TestAxeEvaluator_MalformedResult(t *testing.T) {
	evaluator := NewAxeEvaluatorFromSource("/* axe */")

	for _, malformed := range []string{`{}`, `{"violations": []}`, `null`} {
		exec := &scriptedExecutor{result: malformed}

		_, err := evaluator.Evaluate(context.Background(), exec)
		require.Error(t, err, "result %s", malformed)

		var scanErr *m.ScanError
		require.ErrorAs(t, err, &scanErr)
		assert.Equal(t, m.ErrKindEvaluation, scanErr.Kind)
	}
}

func TestAxeEvaluator_EmptyBucketsAreClean(t *testing.T) {
	exec := &scriptedExecutor{result: `{"violations": [], "passes": []}`}
	evaluator := NewAxeEvaluatorFromSource("/* axe */")

	result, err := evaluator.Evaluate(context.Background(), exec)
	require.NoError(t, err)
	assert.Empty(t, result.Violations)
	assert.Zero(t, result.Passes)
}

func TestAxeEvaluator_PropagatesExecutorErrors(t *testing.T) {
	injectErr := m.RenderErrorf("tab crashed")
	exec := &scriptedExecutor{injectErr: injectErr}
	evaluator := NewAxeEvaluatorFromSource("/* axe */")

	_, err := evaluator.Evaluate(context.Background(), exec)
	assert.True(t, errors.Is(err, injectErr) || err == injectErr)
}

func TestNewAxeEvaluator_MissingScript(t *testing.T) {
	_, err := NewAxeEvaluator(t.TempDir() + "/nope/axe.min.js")
	assert.Error(t, err)
}
