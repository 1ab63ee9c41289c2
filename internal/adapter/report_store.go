package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// Report artifact file names under the output directory.
const (
	JSONReportName = "report.json"
	HTMLReportName = "report.html"
)

// ReportStore persists finalized run reports and loads them back for
// comparison. Writes are all-or-nothing per format: a partial write must
// never be mistaken for a complete report.
type ReportStore interface {
	// Save writes report.json and report.html under outputDir, creating
	// the directory if absent.
	Save(outputDir m.Path, report *m.RunReport) error

	// Load parses a previously saved JSON report.
	Load(path m.Path) (*m.RunReport, error)
}

// LocalReportStore writes reports to the local filesystem, staging each
// file next to its final location and renaming into place.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// Save implements ReportStore.
func (s *LocalReportStore) Save(outputDir m.Path, report *m.RunReport) error {
	dir := string(outputDir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return m.NewScanError(m.ErrKindIO, fmt.Errorf("create output dir %s: %w", dir, err))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return m.NewScanError(m.ErrKindIO, fmt.Errorf("encode json report: %w", err))
	}

	if err := writeAtomic(filepath.Join(dir, JSONReportName), data); err != nil {
		return err
	}

	html, err := RenderHTMLReport(report)
	if err != nil {
		return m.NewScanError(m.ErrKindIO, fmt.Errorf("render html report: %w", err))
	}

	return writeAtomic(filepath.Join(dir, HTMLReportName), html)
}

// Load implements ReportStore.
func (s *LocalReportStore) Load(path m.Path) (*m.RunReport, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, m.NewScanError(m.ErrKindIO, fmt.Errorf("read report %s: %w", path, err))
	}

	var report m.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, m.NewScanError(m.ErrKindIO, fmt.Errorf("parse report %s: %w", path, err))
	}

	return &report, nil
}

// writeAtomic stages content in a temp file in the target directory and
// renames it into place, so readers only ever observe complete files.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return m.NewScanError(m.ErrKindIO, fmt.Errorf("stage %s: %w", path, err))
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return m.NewScanError(m.ErrKindIO, fmt.Errorf("write %s: %w", path, err))
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return m.NewScanError(m.ErrKindIO, fmt.Errorf("close %s: %w", path, err))
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return m.NewScanError(m.ErrKindIO, fmt.Errorf("finalize %s: %w", path, err))
	}

	return nil
}
