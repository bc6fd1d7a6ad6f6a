package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

var (
	headerColor  = color.New(color.FgWhite, color.Bold)
	suiteColor   = color.New(color.FgCyan, color.Bold)
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	skipColor    = color.New(color.FgWhite, color.Faint)
	infoColor    = color.New(color.FgCyan)
	durationTint = color.New(color.Faint)
)

// SpinnerSink prints a line per check result and animates a spinner while
// projects are provisioned and checks run.
type SpinnerSink struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
}

// NewSpinnerSink creates a sink writing to out. The spinner is only used
// when animate is true.
func NewSpinnerSink(out io.Writer, animate bool) *SpinnerSink {
	sink := &SpinnerSink{out: out}
	if animate {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		s.HideCursor = false
		sink.spinner = s
	}
	return sink
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Stage {
	case usecase.StageScenario:
		r.stop()
		label := event.Message
		if scenario, ok := event.Metadata.(domain.ChainScenario); ok {
			label = fmt.Sprintf("%s (%s)", scenario.ChainName, scenario.ChainKey)
		}
		headerColor.Fprintf(r.out, "\n▶ %s [%d/%d]\n", label, event.Current, event.Total)

	case usecase.StageSubSuite:
		r.stop()
		suiteColor.Fprintf(r.out, "  %s\n", event.Message)

	case usecase.StageResult:
		r.stop()
		result, ok := event.Metadata.(domain.CheckResult)
		if !ok {
			return
		}
		r.printResult(result)

	default:
		if event.Spinner && r.spinner != nil {
			r.spinner.Suffix = " " + event.Message
			if !r.spinner.Active() {
				r.spinner.Start()
			}
		}
	}
}

func (r *SpinnerSink) printResult(result domain.CheckResult) {
	switch result.Status {
	case domain.CheckPassed:
		fmt.Fprintf(r.out, "    %s %s %s\n", passColor.Sprint("✓"), result.Check,
			durationTint.Sprintf("(%s)", result.Duration.Round(time.Millisecond)))
	case domain.CheckSkipped:
		fmt.Fprintf(r.out, "    %s %s\n", skipColor.Sprint("⊘"), skipColor.Sprint(result.Check))
	default:
		fmt.Fprintf(r.out, "    %s %s\n", failColor.Sprint("✗"), result.Check)
		for _, line := range strings.Split(strings.TrimRight(result.Error, "\n"), "\n") {
			failColor.Fprintf(r.out, "        %s\n", line)
		}
	}
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.print(infoColor, message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.print(failColor, message)
}

func (r *SpinnerSink) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Stop spinner temporarily
	wasActive := r.spinner != nil && r.spinner.Active()
	r.stop()

	c.Fprintln(r.out, "  "+message)

	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) stop() {
	if r.spinner != nil && r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
