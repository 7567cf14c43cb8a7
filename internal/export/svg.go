// Package export writes run plots as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/viz"
)

// TipPathSVG draws the tip trajectory projected onto plane. Ticks that
// refreshed the Jacobian are marked with a dot. Both axes share one scale.
func TipPathSVG(samples []metrics.Sample, plane viz.Plane, width, height int, strokeColor string) string {
	if len(samples) < 2 {
		return ""
	}
	xs, ys := viz.TipCoords(samples, plane)

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	span := math.Max(maxX-minX, maxY-minY) * 1.2
	if span == 0 {
		span = 1e-3
	}
	scale := math.Min(float64(width), float64(height)) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	project := func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x, y := project(xs[i], ys[i])
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n<g fill=\"#ffaa00\">\n")

	for i, s := range samples {
		if !s.Refreshed {
			continue
		}
		x, y := project(xs[i], ys[i])
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2.5\"/>\n", x, y))
	}

	sb.WriteString(fmt.Sprintf("</g>\n<text x=\"8\" y=\"%d\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">tip %s, %d ticks</text>\n</svg>",
		height-8, plane, len(samples)))
	return sb.String()
}

// SeriesSVG draws one value per tick, e.g. |dq|, as a line chart.
func SeriesSVG(values []float64, width, height int, strokeColor, caption string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	const pad = 20.0
	w, h := float64(width)-2*pad, float64(height)-2*pad

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := pad + float64(i)/float64(len(values)-1)*w
		y := pad + h - (v-lo)/rng*h
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(fmt.Sprintf("\"/>\n<text x=\"8\" y=\"14\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">%s [%.4g, %.4g]</text>\n</svg>",
		caption, lo, hi))
	return sb.String()
}
