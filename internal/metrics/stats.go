package metrics

import "math"

// Stats collects one |dq| sample per tick.
type Stats struct {
	count int
	sum   float64
	min   float64
	max   float64
}

type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func NewStats() *Stats {
	s := &Stats{}
	s.Reset()
	return s
}

func (s *Stats) Add(v float64) {
	s.count++
	s.sum += v
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

func (s *Stats) Name() string     { return "dq_norm_mean" }
func (s *Stats) Observe(x Sample) { s.Add(x.DqNorm) }
func (s *Stats) Value() float64   { return s.Summary().Mean }

func (s *Stats) Reset() {
	s.count = 0
	s.sum = 0
	s.min = math.Inf(1)
	s.max = math.Inf(-1)
}

// Summary returns zeros when nothing was recorded.
func (s *Stats) Summary() Summary {
	if s.count == 0 {
		return Summary{}
	}
	return Summary{
		Count: s.count,
		Mean:  s.sum / float64(s.count),
		Min:   s.min,
		Max:   s.max,
	}
}
