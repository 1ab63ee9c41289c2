package domain

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// DefaultWaiverFile is the waiver file looked up in the repository root.
const DefaultWaiverFile = ".a11yscan-waivers.yaml"

// Waiver excludes matching violations from the verdict. Rule is an axe
// rule ID; Path is an optional glob matched against the document's
// repo-relative path (or its base name). An empty Path waives the rule
// everywhere.
type Waiver struct {
	Rule   string `yaml:"rule"`
	Path   string `yaml:"path,omitempty"`
	Reason string `yaml:"reason,omitempty"`
}

// WaiverSet is the parsed waiver file.
type WaiverSet struct {
	Waivers []Waiver `yaml:"waivers"`
}

// LoadWaivers parses the waiver file at path. A missing file is an
// empty set, not an error.
func LoadWaivers(path m.Path) (*WaiverSet, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &WaiverSet{}, nil
		}

		return nil, fmt.Errorf("read waiver file %s: %w", path, err)
	}

	var set WaiverSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse waiver file %s: %w", path, err)
	}

	return &set, nil
}

// Covers reports whether a violation of ruleID in the document at
// docPath is waived.
func (s *WaiverSet) Covers(ruleID string, docPath m.Path) bool {
	if s == nil {
		return false
	}

	for _, waiver := range s.Waivers {
		if waiver.Rule != ruleID {
			continue
		}

		if waiver.Path == "" {
			return true
		}

		if ok, err := filepath.Match(waiver.Path, string(docPath)); err == nil && ok {
			return true
		}

		if ok, err := filepath.Match(waiver.Path, filepath.Base(string(docPath))); err == nil && ok {
			return true
		}
	}

	return false
}

// Apply strips waived violations from a completed outcome, recording
// how many were waived. Non-completed outcomes pass through untouched.
func (s *WaiverSet) Apply(docPath m.Path, outcome m.ScanOutcome) m.ScanOutcome {
	if s == nil || len(s.Waivers) == 0 || outcome.Kind != m.OutcomeCompleted || outcome.Result == nil {
		return outcome
	}

	kept := make([]m.Violation, 0, len(outcome.Result.Violations))
	waived := 0

	for _, violation := range outcome.Result.Violations {
		if s.Covers(violation.RuleID, docPath) {
			waived++
			continue
		}

		kept = append(kept, violation)
	}

	if waived == 0 {
		return outcome
	}

	result := *outcome.Result
	result.Violations = kept
	outcome.Result = &result
	outcome.Waived = waived

	return outcome
}
