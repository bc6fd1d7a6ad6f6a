package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// ReportDocument is the machine-readable shape of a run report
type ReportDocument struct {
	RunID     string                  `json:"runId" yaml:"runId"`
	StartedAt time.Time               `json:"startedAt" yaml:"startedAt"`
	Duration  string                  `json:"duration" yaml:"duration"`
	Summary   domain.Summary          `json:"summary" yaml:"summary"`
	Scenarios []domain.ScenarioReport `json:"scenarios" yaml:"scenarios"`
}

// NewReportDocument flattens report and its summary
func NewReportDocument(report *domain.RunReport) ReportDocument {
	return ReportDocument{
		RunID:     report.RunID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration.Round(time.Millisecond).String(),
		Summary:   report.Summary(),
		Scenarios: report.Scenarios,
	}
}

// EncodeReport writes report to w as json or yaml
func EncodeReport(w io.Writer, report *domain.RunReport, format string) error {
	return Encode(w, NewReportDocument(report), format)
}

// Encode writes v to w as json or yaml
func Encode(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteReportFile writes report to path, picking the encoding from its
// extension (.yaml/.yml, otherwise json)
func WriteReportFile(path string, report *domain.RunReport) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := EncodeReport(f, report, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
