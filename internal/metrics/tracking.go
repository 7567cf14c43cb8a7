package metrics

import "github.com/san-kum/ikdrive/internal/robot"

// TrackingError is the mean distance between the displacement requested on
// one tick and the tip motion observed at the start of the next.
type TrackingError struct {
	name    string
	prev    robot.CartesianVector
	prevDx  robot.CartesianVector
	primed  bool
	sum     float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (m *TrackingError) Name() string {
	return m.name
}

func (m *TrackingError) Observe(s Sample) {
	if m.primed {
		moved := s.Tip.Sub(m.prev)
		m.sum += moved.Sub(m.prevDx).Norm()
		m.samples++
	}
	m.prev = s.Tip
	m.prevDx = s.Dx
	m.primed = true
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *TrackingError) Reset() {
	m.primed = false
	m.sum = 0
	m.samples = 0
}
