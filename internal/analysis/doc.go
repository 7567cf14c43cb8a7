// Package analysis looks for periodic structure in per-tick run data.
//
// A cached Jacobian goes stale between refreshes, so |dq| tends to ripple
// with the refresh period. [Spectrum] measures frequencies in cycles per
// tick, which puts that ripple at 1/period regardless of how much simulated
// time each tick took:
//
//	peak, ok := analysis.Dominant(viz.DqNorms(samples))
//	if ok && math.Abs(peak.Freq-1/float64(period)) < 0.01 {
//	    // refresh ripple dominates
//	}
package analysis
