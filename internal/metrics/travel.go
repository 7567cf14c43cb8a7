package metrics

// TipTravel is the path length covered by the tip.
type TipTravel struct {
	first    bool
	last     Sample
	distance float64
}

func NewTipTravel() *TipTravel {
	return &TipTravel{first: true}
}

func (t *TipTravel) Name() string { return "tip_travel" }

func (t *TipTravel) Observe(x Sample) {
	if !t.first {
		t.distance += x.Tip.Sub(t.last.Tip).Norm()
	}
	t.first = false
	t.last = x
}

func (t *TipTravel) Value() float64 { return t.distance }

func (t *TipTravel) Reset() {
	t.first = true
	t.distance = 0
}
