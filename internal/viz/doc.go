// Package viz renders control runs in the terminal.
//
// [Summary] and [Report] print the end-of-run panel, [PlotSeries] and
// [TipPath] draw |dq| and the tip trajectory, and [Model] is a Bubble Tea
// program fed by a [Feed] observer while the loop runs.
//
// # Key Bindings
//
//	P - Toggle the tip plane between x-y and x-z
//	Q - Quit, cancelling the run if it is still going
package viz
