package metrics

// Saturation is the fraction of ticks on which the velocity limiter changed
// the solver's step.
type Saturation struct {
	name     string
	saturate int
	samples  int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(x Sample) {
	s.samples++
	if x.RawNorm > x.DqNorm+1e-12 {
		s.saturate++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturate) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturate = 0
	s.samples = 0
}
