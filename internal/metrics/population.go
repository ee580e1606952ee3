package metrics

// Population records the live paper count over time.
type Population struct {
	capacity int
	history  []float64
	peak     int
	spawned  int
}

func NewPopulation(capacity int) *Population {
	return &Population{
		capacity: capacity,
		history:  make([]float64, 0, capacity),
	}
}

// Observe records the live count of one sample.
func (p *Population) Observe(live int) {
	if live > p.peak {
		p.peak = live
	}
	if p.capacity > 0 && len(p.history) == p.capacity {
		copy(p.history, p.history[1:])
		p.history = p.history[:len(p.history)-1]
	}
	p.history = append(p.history, float64(live))
}

// Spawned adds n papers to the spawn total.
func (p *Population) Spawned(n int) { p.spawned += n }

func (p *Population) Peak() int          { return p.peak }
func (p *Population) Total() int         { return p.spawned }
func (p *Population) History() []float64 { return p.history }

// Value is the most recent live count.
func (p *Population) Value() float64 {
	if len(p.history) == 0 {
		return 0
	}
	return p.history[len(p.history)-1]
}

func (p *Population) Reset() {
	p.history = p.history[:0]
	p.peak = 0
	p.spawned = 0
}
