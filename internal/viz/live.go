package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/metrics"
)

const (
	canvasWidth     = 48
	canvasHeight    = 16
	historyCapacity = 600
)

type SampleMsg metrics.Sample

type DoneMsg struct {
	Result *control.Result
	Err    error
}

// Feed carries samples from the control loop goroutine to the UI. It is a
// control.Observer. When the UI falls behind, samples are dropped rather
// than stalling the loop.
type Feed struct {
	samples chan metrics.Sample
	done    DoneMsg
}

func NewFeed(buffer int) *Feed {
	return &Feed{samples: make(chan metrics.Sample, buffer)}
}

func (f *Feed) OnTick(s metrics.Sample) {
	select {
	case f.samples <- s:
	default:
	}
}

// Finish must be called once, from the goroutine that ran the loop.
func (f *Feed) Finish(result *control.Result, err error) {
	f.done = DoneMsg{Result: result, Err: err}
	close(f.samples)
}

// Next waits for the next sample, or the DoneMsg after the last one.
func (f *Feed) Next() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-f.samples
		if !ok {
			return f.done
		}
		return SampleMsg(s)
	}
}

// Model is the live view of a running loop.
type Model struct {
	feed   *Feed
	cancel context.CancelFunc
	cfg    control.Config

	samples []metrics.Sample
	dq      []float64
	plane   Plane

	done   bool
	result *control.Result
	err    error
}

// NewModel watches feed. cancel is called when the user quits early.
func NewModel(feed *Feed, cancel context.CancelFunc, cfg control.Config) Model {
	return Model{
		feed:    feed,
		cancel:  cancel,
		cfg:     cfg,
		samples: make([]metrics.Sample, 0, historyCapacity),
		dq:      make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return m.feed.Next()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "p":
			m.plane = (m.plane + 1) % 2
		}
	case SampleMsg:
		m.push(metrics.Sample(msg))
		return m, m.feed.Next()
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

func (m *Model) push(s metrics.Sample) {
	if len(m.samples) == historyCapacity {
		copy(m.samples, m.samples[1:])
		m.samples = m.samples[:historyCapacity-1]
		copy(m.dq, m.dq[1:])
		m.dq = m.dq[:historyCapacity-1]
	}
	m.samples = append(m.samples, s)
	m.dq = append(m.dq, s.DqNorm)
}

// Done reports whether the loop has finished.
func (m Model) Done() bool { return m.done }

func (m Model) Result() (*control.Result, error) { return m.result, m.err }

func (m Model) View() string {
	var s strings.Builder

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.done && m.err != nil:
		status = StatusFailed.Render("FAILED") + " " + Subtle.Render(m.err.Error())
	case m.done:
		status = StatusRunning.Render("COMPLETE")
	}
	s.WriteString(Title.Render("IKDRIVE LIVE") + "  " + status + "\n\n")

	if n := len(m.samples); n > 0 {
		last := m.samples[n-1]
		progress := last.Time / m.cfg.Duration
		s.WriteString(Row("time", fmt.Sprintf("%.2f / %.2f s", last.Time, m.cfg.Duration)) + "\n")
		s.WriteString(MetricLabel.Render("progress") + ProgressBar(progress, 20) + "\n")
		s.WriteString(Row("tick", fmt.Sprintf("%d", last.Tick)) + "\n")
		s.WriteString(Row("tip", fmt.Sprintf("(%.4f, %.4f, %.4f)", last.Tip.X, last.Tip.Y, last.Tip.Z)) + "\n")
		s.WriteString(Row("|dx|", fmt.Sprintf("%.5f", last.Dx.Norm())) + "\n")
		s.WriteString(Row("|dq|", fmt.Sprintf("%.5f", last.DqNorm)) + "\n")
		jac := "cached"
		if last.Refreshed {
			jac = "refreshed"
		}
		s.WriteString(Row("jacobian", jac) + "\n")
	} else {
		s.WriteString(Subtle.Render("waiting for first tick") + "\n")
	}

	s.WriteString("\n" + GraphStyle.Render(PlotSeries(m.dq, 40, 5, "|dq|")) + "\n")
	s.WriteString(KeyHint.Render("P:plane Q:quit"))

	stats := Panel.Render(s.String())
	path := Panel.Render(Subtle.Render("tip "+m.plane.String()) + "\n" +
		TipPath(m.samples, m.plane, canvasWidth, canvasHeight))
	return lipgloss.JoinHorizontal(lipgloss.Top, path, stats)
}
