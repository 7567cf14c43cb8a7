package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ikdrive/internal/metrics"
)

// Plane selects the two tip coordinates drawn on a canvas.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
)

func (p Plane) String() string {
	if p == PlaneXZ {
		return "x-z"
	}
	return "x-y"
}

// DqNorms extracts |dq| per tick.
func DqNorms(samples []metrics.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.DqNorm
	}
	return out
}

// PlotSeries draws data with asciigraph. Fewer than two points render as a
// short note.
func PlotSeries(data []float64, width, height int, caption string) string {
	if len(data) < 2 {
		return Subtle.Render(fmt.Sprintf("%s: not enough data", caption))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.Caption(caption),
	)
}

// TipCoords projects the tip positions of samples onto plane.
func TipCoords(samples []metrics.Sample, plane Plane) (xs, ys []float64) {
	xs = make([]float64, len(samples))
	ys = make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Tip.X
		if plane == PlaneXZ {
			ys[i] = s.Tip.Z
		} else {
			ys[i] = s.Tip.Y
		}
	}
	return xs, ys
}

// TipPath draws the tip trajectory on a fresh w×h canvas.
func TipPath(samples []metrics.Sample, plane Plane, w, h int) string {
	c := NewCanvas(w, h)
	xs, ys := TipCoords(samples, plane)
	c.Fit(xs, ys)
	c.Path(xs, ys)
	return c.String()
}
