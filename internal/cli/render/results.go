package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

var (
	passedStyle  = color.New(color.FgGreen)
	failedStyle  = color.New(color.FgRed)
	skippedStyle = color.New(color.Faint)
	scenarioBold = color.New(color.Bold, color.FgHiWhite)
	faintStyle   = color.New(color.Faint)
)

// ResultsRenderer renders a run report as one table per chain
type ResultsRenderer struct {
	out io.Writer
}

// NewResultsRenderer creates a new results renderer
func NewResultsRenderer(out io.Writer) *ResultsRenderer {
	return &ResultsRenderer{out: out}
}

// Render writes the per-chain tables, the failures and the summary line
func (r *ResultsRenderer) Render(report *domain.RunReport) error {
	if len(report.Scenarios) == 0 {
		fmt.Fprintln(r.out, "No checks were run")
		return nil
	}

	for _, sc := range report.Scenarios {
		fmt.Fprintln(r.out)
		scenarioBold.Fprintf(r.out, "%s (%s)\n", sc.Scenario.ChainName, sc.Scenario.ChainKey)
		fmt.Fprintln(r.out, r.scenarioTable(sc))
	}

	var failures []domain.CheckResult
	for _, sc := range report.Scenarios {
		for _, res := range sc.Results {
			if res.Status == domain.CheckFailed {
				failures = append(failures, res)
			}
		}
	}
	if len(failures) > 0 {
		fmt.Fprintln(r.out)
		failedStyle.Fprintln(r.out, "Failures:")
		for _, f := range failures {
			fmt.Fprintf(r.out, "  %s › %s\n", f.Suite, f.Check)
			for _, line := range strings.Split(strings.TrimRight(f.Error, "\n"), "\n") {
				faintStyle.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintln(r.out)
	summary := report.Summary()
	line := fmt.Sprintf("%d passed, %d failed, %d skipped (%d checks in %s)",
		summary.Passed, summary.Failed, summary.Skipped, summary.Total(), report.Duration.Round(time.Millisecond))
	if summary.Failed > 0 {
		fmt.Fprintln(r.out, FormatError(line))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(line))
	}
	return nil
}

func (r *ResultsRenderer) scenarioTable(sc domain.ScenarioReport) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Suite", "Check", "Status", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignRight},
	})

	for _, res := range sc.Results {
		duration := ""
		if res.Status == domain.CheckPassed || res.Duration > 0 {
			duration = res.Duration.Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{res.Suite, res.Check, formatStatus(res.Status), duration})
	}
	return t.Render()
}

func formatStatus(status domain.CheckStatus) string {
	label := cases.Title(language.English).String(string(status))
	switch status {
	case domain.CheckPassed:
		return passedStyle.Sprint("✓ " + label)
	case domain.CheckFailed:
		return failedStyle.Sprint("✗ " + label)
	default:
		return skippedStyle.Sprint("⊘ " + label)
	}
}

var _ Renderer[*domain.RunReport] = (*ResultsRenderer)(nil)
