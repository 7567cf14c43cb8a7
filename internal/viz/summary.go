package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/ikdrive/internal/control"
)

// Summary renders the end-of-run panel. result may be nil when the loop
// never started.
func Summary(cfg control.Config, result *control.Result, runErr error) string {
	var b strings.Builder

	b.WriteString(Title.Render("IKDRIVE RUN") + "\n")
	if runErr != nil {
		b.WriteString(StatusFailed.Render("FAILED") + " " + Subtle.Render(runErr.Error()) + "\n\n")
	} else {
		b.WriteString(StatusRunning.Render("COMPLETE") + "\n\n")
	}

	b.WriteString(Row("refresh period", fmt.Sprintf("%d ticks", cfg.RefreshPeriod)) + "\n")
	b.WriteString(Row("damping λ", fmt.Sprintf("%g", cfg.Damping)) + "\n")
	b.WriteString(Row("step size", fmt.Sprintf("%g m", cfg.StepSize)) + "\n")

	if result != nil {
		b.WriteString("\n")
		b.WriteString(Row("duration", fmt.Sprintf("%.3f s", result.Elapsed)) + "\n")
		b.WriteString(Row("ticks", fmt.Sprintf("%d", result.Ticks)) + "\n")
		b.WriteString(Row("refreshes", fmt.Sprintf("%d", len(result.Refreshes))) + "\n")
		b.WriteString(Row("|dq| mean", fmt.Sprintf("%.6f", result.Stats.Mean)) + "\n")
		b.WriteString(Row("|dq| min", fmt.Sprintf("%.6f", result.Stats.Min)) + "\n")
		b.WriteString(Row("|dq| max", fmt.Sprintf("%.6f", result.Stats.Max)) + "\n")

		if len(result.Metrics) > 0 {
			b.WriteString("\n")
			names := make([]string, 0, len(result.Metrics))
			for name := range result.Metrics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				b.WriteString(Row(name, fmt.Sprintf("%.6g", result.Metrics[name])) + "\n")
			}
		}
		if sat, ok := result.Metrics["saturation"]; ok {
			b.WriteString(MetricLabel.Render("limiter") + ProgressBar(sat, 20) + "\n")
		}
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Report places the summary next to the |dq| graph.
func Report(cfg control.Config, result *control.Result, runErr error) string {
	panel := Summary(cfg, result, runErr)
	if result == nil || len(result.Samples) < 2 {
		return panel
	}
	graph := GraphStyle.Render(PlotSeries(DqNorms(result.Samples), 60, 10, "|dq| per tick"))
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", graph)
}
