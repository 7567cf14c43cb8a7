package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/robot"
)

func circleSamples(n int) []metrics.Sample {
	out := make([]metrics.Sample, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = metrics.Sample{
			Tick:   i + 1,
			Time:   0.05 * float64(i),
			Tip:    robot.CartesianVector{X: 0.3 + 0.05*math.Cos(a), Y: 0.05 * math.Sin(a), Z: 0.49},
			DqNorm: 0.004 + 0.001*math.Sin(a),
		}
	}
	return out
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("expected dot 8 in second cell, got %U", c.Grid[0][1])
	}

	c.Clear()
	if c.Grid[0][0] != blank || c.Grid[0][1] != blank {
		t.Error("clear left dots behind")
	}
}

func TestCanvasFitKeepsPointsInside(t *testing.T) {
	c := NewCanvas(20, 10)
	xs, ys := TipCoords(circleSamples(50), PlaneXY)
	c.Fit(xs, ys)

	for i := range xs {
		x, y := c.Dot(xs[i], ys[i])
		if x < 0 || x >= c.Width*2 || y < 0 || y >= c.Height*4 {
			t.Fatalf("point %d mapped outside canvas: (%d, %d)", i, x, y)
		}
	}
}

func TestCanvasFitSinglePoint(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Fit([]float64{0.3}, []float64{0.1})
	x, y := c.Dot(0.3, 0.1)
	if absInt(x-10) > 1 || absInt(y-10) > 1 {
		t.Errorf("single point should land near the centre, got (%d, %d)", x, y)
	}
}

func TestTipPath(t *testing.T) {
	out := TipPath(circleSamples(40), PlaneXY, 20, 8)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(lines))
	}
	lit := 0
	for _, r := range out {
		if r > blank && r <= blank+0xff {
			lit++
		}
	}
	if lit == 0 {
		t.Error("no dots drawn")
	}
}

func TestPlotSeries(t *testing.T) {
	if out := PlotSeries([]float64{1}, 20, 4, "|dq|"); !strings.Contains(out, "not enough data") {
		t.Errorf("expected placeholder, got %q", out)
	}
	out := PlotSeries(DqNorms(circleSamples(30)), 30, 5, "|dq|")
	if !strings.Contains(out, "|dq|") {
		t.Errorf("caption missing from plot:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	result := &control.Result{
		Stats:     metrics.Summary{Count: 3, Mean: 0.0123, Min: 0.01, Max: 0.015},
		Ticks:     3,
		Refreshes: []int{1},
		Elapsed:   0.15,
		Metrics:   map[string]float64{"saturation": 0.5, "tracking_error": 1e-4},
		Samples:   circleSamples(3),
	}

	out := Summary(control.DefaultConfig(), result, nil)
	for _, want := range []string{"COMPLETE", "0.012300", "saturation", "tracking_error", "0.150 s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	failed := Summary(control.DefaultConfig(), nil, errors.New("tick 6 (t=1.2500): boom"))
	if !strings.Contains(failed, "FAILED") || !strings.Contains(failed, "boom") {
		t.Errorf("failure not shown:\n%s", failed)
	}

	if report := Report(control.DefaultConfig(), result, nil); !strings.Contains(report, "|dq| per tick") {
		t.Errorf("report missing graph:\n%s", report)
	}
}

func TestFeedDeliversSamplesThenDone(t *testing.T) {
	feed := NewFeed(4)
	for _, s := range circleSamples(3) {
		feed.OnTick(s)
	}
	result := &control.Result{Ticks: 3}
	feed.Finish(result, nil)

	for i := 1; i <= 3; i++ {
		msg, ok := feed.Next()().(SampleMsg)
		if !ok || msg.Tick != i {
			t.Fatalf("expected sample %d, got %#v", i, msg)
		}
	}
	done, ok := feed.Next()().(DoneMsg)
	if !ok || done.Result != result {
		t.Fatalf("expected done message, got %#v", done)
	}
}

func TestFeedDropsWhenFull(t *testing.T) {
	feed := NewFeed(1)
	feed.OnTick(metrics.Sample{Tick: 1})
	feed.OnTick(metrics.Sample{Tick: 2})
	feed.Finish(nil, nil)

	if msg := feed.Next()().(SampleMsg); msg.Tick != 1 {
		t.Errorf("expected first sample kept, got %d", msg.Tick)
	}
	if _, ok := feed.Next()().(DoneMsg); !ok {
		t.Error("expected done after the buffered sample")
	}
}

func TestModelUpdate(t *testing.T) {
	cancelled := false
	feed := NewFeed(1)
	m := NewModel(feed, func() { cancelled = true }, control.DefaultConfig())

	var tm tea.Model = m
	for _, s := range circleSamples(5) {
		var cmd tea.Cmd
		tm, cmd = tm.Update(SampleMsg(s))
		if cmd == nil {
			t.Fatal("expected a command waiting for the next sample")
		}
	}
	if got := len(tm.(Model).samples); got != 5 {
		t.Errorf("expected 5 samples, got %d", got)
	}
	if view := tm.View(); !strings.Contains(view, "RUNNING") || !strings.Contains(view, "tick") {
		t.Errorf("unexpected view:\n%s", view)
	}

	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if tm.(Model).plane != PlaneXZ {
		t.Error("p should switch to the x-z plane")
	}

	runErr := errors.New("stop refused")
	tm, _ = tm.Update(DoneMsg{Err: runErr})
	if !tm.(Model).Done() {
		t.Error("expected model to be done")
	}
	if !strings.Contains(tm.View(), "FAILED") {
		t.Error("failure not shown in view")
	}

	_, cmd := tm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if cancelled {
		t.Error("finished run should not be cancelled")
	}
}

func TestModelQuitCancelsRunningLoop(t *testing.T) {
	cancelled := false
	m := NewModel(NewFeed(1), func() { cancelled = true }, control.DefaultConfig())
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !cancelled {
		t.Error("quitting a running loop should cancel it")
	}
}

func TestModelHistoryBounded(t *testing.T) {
	m := NewModel(NewFeed(1), nil, control.DefaultConfig())
	for i := 0; i < historyCapacity+25; i++ {
		m.push(metrics.Sample{Tick: i + 1})
	}
	if len(m.samples) != historyCapacity || len(m.dq) != historyCapacity {
		t.Fatalf("history grew past capacity: %d", len(m.samples))
	}
	if m.samples[0].Tick != 26 {
		t.Errorf("expected oldest tick 26, got %d", m.samples[0].Tick)
	}
}
