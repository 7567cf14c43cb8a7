package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one line of a one-sided power spectrum. Freq is in cycles per
// sample.
type Bin struct {
	Freq  float64
	Power float64
}

// Spectrum returns the one-sided power spectrum of data with the mean
// removed, from DC up to the Nyquist frequency.
func Spectrum(data []float64) []Bin {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	bins := make([]Bin, n/2+1)
	for k := range bins {
		mag := cmplx.Abs(coeffs[k]) / float64(n)
		bins[k] = Bin{Freq: float64(k) / float64(n), Power: mag * mag}
	}
	return bins
}

// Dominant returns the strongest non-DC bin. ok is false when data is too
// short or flat.
func Dominant(data []float64) (peak Bin, ok bool) {
	bins := Spectrum(data)
	for _, b := range bins[min(1, len(bins)):] {
		if b.Power > peak.Power {
			peak, ok = b, true
		}
	}
	return peak, ok
}

// PowerAt returns the fraction of non-DC power in the bin nearest freq.
func PowerAt(data []float64, freq float64) float64 {
	bins := Spectrum(data)
	if len(bins) < 2 {
		return 0
	}

	total := 0.0
	best := 1
	for k := 1; k < len(bins); k++ {
		total += bins[k].Power
		if math.Abs(bins[k].Freq-freq) < math.Abs(bins[best].Freq-freq) {
			best = k
		}
	}
	if total == 0 {
		return 0
	}
	return bins[best].Power / total
}

// Powers extracts the power column, e.g. for plotting.
func Powers(bins []Bin) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = b.Power
	}
	return out
}
