package adapter

import (
	"bytes"
	"html/template"
	"sort"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// htmlReportTemplate is the self-contained human-readable report: no
// external assets, inline styles only, so it renders anywhere a CI
// artifact viewer can show a file.
const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Accessibility Report — {{.Report.Repo}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
.header { background: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 30px; }
.summary { background: #ecf0f1; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
.verdict-pass { color: #28a745; font-weight: bold; }
.verdict-fail { color: #dc3545; font-weight: bold; }
.note { background: #fff3cd; border-left: 4px solid #ffc107; padding: 12px; margin: 10px 0; border-radius: 3px; }
.document { margin: 20px 0; padding: 15px; background: #f8f9fa; border-radius: 5px; }
.violation { background: #ffe6e6; border-left: 4px solid #e74c3c; padding: 15px; margin: 10px 0; border-radius: 3px; }
.incomplete { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 10px 0; border-radius: 3px; }
.clean { background: #d4edda; border-left: 4px solid #28a745; padding: 15px; margin: 10px 0; border-radius: 3px; }
.error { background: #f8d7da; border-left: 4px solid #dc3545; padding: 15px; margin: 10px 0; border-radius: 3px; }
.impact-critical { border-left-color: #e74c3c !important; }
.impact-serious { border-left-color: #e67e22 !important; }
.impact-moderate { border-left-color: #f39c12 !important; }
.impact-minor { border-left-color: #f1c40f !important; }
.snippet { background: #f1f1f1; padding: 10px; border-radius: 3px; font-family: monospace; overflow-x: auto; white-space: pre-wrap; }
details > summary { cursor: pointer; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>Accessibility Report</h1>
<p>{{.Report.Repo}} — generated {{.Report.EndedAt.Format "2006-01-02 15:04:05 MST"}}</p>
</div>

<div class="summary">
<h2>Summary</h2>
<p><strong>Verdict:</strong> <span class="verdict-{{.Report.Verdict}}">{{.Report.Verdict}}</span></p>
<p><strong>Documents scanned:</strong> {{.Report.Summary.Documents}}
({{.Report.Summary.Completed}} completed, {{.Report.Summary.Failed}} failed, {{.Report.Summary.TimedOut}} timed out)</p>
<p><strong>Violations:</strong> {{.Report.Summary.Violations}}{{if .Report.Summary.Waived}} ({{.Report.Summary.Waived}} waived){{end}}</p>
<p><strong>Incomplete checks:</strong> {{.Report.Summary.Incomplete}}</p>
<p><strong>Scan mode:</strong> {{.Report.Selection.EffectiveMode}} (requested {{.Report.Selection.RequestedMode}})</p>
{{if .Report.Selection.FellBack}}<div class="note">Affected-file detection was unavailable and the run fell back to a full-tree scan: {{.Report.Selection.FallbackReason}}</div>{{end}}
{{if .Report.Selection.Truncated}}<div class="note">The candidate list exceeded the file limit and was truncated.</div>{{end}}
</div>

{{if .Report.Documents}}
<div class="summary">
<details>
<summary><strong>Rules executed</strong> ({{len .FailedRules}} with findings, {{len .PassedRules}} passed, {{len .InapplicableRules}} not applicable)</summary>
{{if .FailedRules}}<h4>Rules with findings</h4><ul>{{range .FailedRules}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .PassedRules}}<h4>Rules that passed</h4><ul>{{range .PassedRules}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .InapplicableRules}}<h4>Rules not applicable</h4><ul>{{range .InapplicableRules}}<li>{{.}}</li>{{end}}</ul>{{end}}
</details>
</div>

<h2>Results by document</h2>
{{range .Report.Documents}}
<div class="document">
{{if eq .Outcome.Kind "completed"}}
{{if .Outcome.Result.Violations}}
<details open>
<summary><strong>{{.Path}}</strong> — {{len .Outcome.Result.Violations}} violation(s), {{len .Outcome.Result.Incomplete}} incomplete</summary>
{{range .Outcome.Result.Violations}}
<div class="violation impact-{{.Impact}}">
<h4>{{.RuleID}} <small>(impact: {{.Impact}})</small></h4>
<p>{{.Help}}</p>
{{if .HelpURL}}<p><a href="{{.HelpURL}}">{{.HelpURL}}</a></p>{{end}}
{{range .Nodes}}
{{if .HTML}}<div class="snippet">{{.HTML}}</div>{{end}}
{{if .FailureSummary}}<p>{{.FailureSummary}}</p>{{end}}
{{end}}
</div>
{{end}}
{{range .Outcome.Result.Incomplete}}
<div class="incomplete impact-{{.Impact}}">
<h4>{{.RuleID}} <small>(incomplete, impact: {{.Impact}})</small></h4>
<p>{{.Help}}</p>
{{if .HelpURL}}<p><a href="{{.HelpURL}}">{{.HelpURL}}</a></p>{{end}}
</div>
{{end}}
</details>
{{else}}
<div class="clean"><strong>{{.Path}}</strong> — no accessibility issues found ({{.Outcome.Result.Passes}} checks passed)</div>
{{end}}
{{else if eq .Outcome.Kind "timed_out"}}
<div class="error"><strong>{{.Path}}</strong> — scan timed out</div>
{{else}}
<div class="error"><strong>{{.Path}}</strong> — scan failed ({{.Outcome.ErrorKind}}): {{.Outcome.ErrorMessage}}</div>
{{end}}
</div>
{{end}}
{{else}}
<div class="note">
<h4>No documents scanned</h4>
<p>No HTML files were found in {{.Report.Repo}}. Possible reasons:</p>
<ul>
<li>the repository contains no <code>.html</code> or <code>.htm</code> files</li>
<li>HTML files live only under excluded directories (node_modules, dist, build, …)</li>
</ul>
</div>
{{end}}
</div>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(htmlReportTemplate))

// htmlReportView is the template's root context: the report plus the
// run-wide rule sets for the rules-executed section.
type htmlReportView struct {
	Report *m.RunReport

	FailedRules       []string
	PassedRules       []string
	InapplicableRules []string
}

// RenderHTMLReport renders the self-contained HTML report.
func RenderHTMLReport(report *m.RunReport) ([]byte, error) {
	view := htmlReportView{Report: report}
	view.FailedRules, view.PassedRules, view.InapplicableRules = collectRuleSets(report)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// collectRuleSets unions rule IDs across documents: rules with findings
// (violations or incomplete), rules that passed, rules not applicable.
func collectRuleSets(report *m.RunReport) (failed, passed, inapplicable []string) {
	failedSet := map[string]struct{}{}
	passedSet := map[string]struct{}{}
	inapplicableSet := map[string]struct{}{}

	for _, doc := range report.Documents {
		result := doc.Outcome.Result
		if doc.Outcome.Kind != m.OutcomeCompleted || result == nil {
			continue
		}

		for _, v := range result.Violations {
			failedSet[v.RuleID] = struct{}{}
		}

		for _, v := range result.Incomplete {
			failedSet[v.RuleID] = struct{}{}
		}

		for _, id := range result.PassedRules {
			passedSet[id] = struct{}{}
		}

		for _, id := range result.InapplicableRules {
			inapplicableSet[id] = struct{}{}
		}
	}

	return sortedKeys(failedSet), sortedKeys(passedSet), sortedKeys(inapplicableSet)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
