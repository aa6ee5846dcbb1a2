package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	simStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const ruleWidth = 64

// Display handles terminal progress output for the pipeline.
type Display struct {
	w       io.Writer
	verbose bool
	silent  bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDisplay creates a display that writes to stdout. In verbose mode each
// stage prints a plain line (external tool output follows); otherwise the
// running line is updated in place with elapsed time.
func NewDisplay(verbose bool) *Display {
	return &Display{w: os.Stdout, verbose: verbose}
}

// nopDisplay swallows all output; used when the engine has no display.
var nopDisplay = &Display{w: io.Discard, silent: true}

// Header prints the pipeline header.
func (d *Display) Header(title string) {
	if d.silent {
		return
	}
	fmt.Fprintf(d.w, "\n%s\n", titleStyle.Render(title))
	fmt.Fprintln(d.w, ruleStyle.Render(strings.Repeat("─", ruleWidth)))
}

// StageStart prints a stage-in-progress line and starts an elapsed ticker.
func (d *Display) StageStart(name string) {
	if d.silent {
		return
	}
	if d.verbose {
		fmt.Fprintf(d.w, "⏳ %-10s running...\n", name)
		return
	}
	fmt.Fprintf(d.w, "⏳ %-10s running...", name)

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop = stop
	d.done = done
	start := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(d.w, "\r⏳ %-10s running... %.0fs",
					name, time.Since(start).Seconds())
			}
		}
	}()
}

// stopTicker stops the elapsed time goroutine and waits for it to finish.
func (d *Display) stopTicker() {
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
		d.done = nil
	}
}

func (d *Display) linePrefix() string {
	if d.verbose {
		return ""
	}
	return "\r"
}

// StageDone prints a completed stage line, overwriting the running line in
// non-verbose mode.
func (d *Display) StageDone(name, detail string, duration time.Duration) {
	if d.silent {
		return
	}
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-10s %-40s %.1fs\n",
		d.linePrefix(), okStyle.Render("✔"), name, detail, duration.Seconds())
}

// StageSkipped prints a skipped stage line.
func (d *Display) StageSkipped(name string) {
	if d.silent {
		return
	}
	fmt.Fprintf(d.w, "%s %-10s skipped\n", skipStyle.Render("–"), name)
}

// StageSimulated prints a dry-run stage line with the commands that would
// have run.
func (d *Display) StageSimulated(name, detail string) {
	if d.silent {
		return
	}
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-10s would run:\n", d.linePrefix(), simStyle.Render("≈"), name)
	for _, line := range strings.Split(detail, "\n") {
		if line != "" {
			fmt.Fprintf(d.w, "    %s\n", line)
		}
	}
}

// StageFailed prints a failed stage line, overwriting the running line in
// non-verbose mode.
func (d *Display) StageFailed(name string, err error) {
	if d.silent {
		return
	}
	d.stopTicker()
	fmt.Fprintf(d.w, "%s%s %-10s %s\n", d.linePrefix(), failStyle.Render("✘"), name, err.Error())
}

// Summary prints the final run summary naming the first failed stage, if any.
func (d *Display) Summary(rep *Report) {
	if d.silent {
		return
	}
	fmt.Fprintln(d.w, ruleStyle.Render(strings.Repeat("─", ruleWidth)))
	if rep.Succeeded() {
		fmt.Fprintf(d.w, "%s\n\n", okStyle.Render("Release pipeline succeeded"))
		return
	}
	fmt.Fprintf(d.w, "%s\n\n", failStyle.Render(fmt.Sprintf("Release pipeline failed at stage %q", rep.FailedStage)))
}
