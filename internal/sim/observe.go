package sim

import "github.com/san-kum/confetti/internal/metrics"

type populationObserver struct {
	p *metrics.Population
}

func (o populationObserver) OnFrame(f Frame) { o.p.Observe(len(f.Particles)) }

// ObservePopulation records the live count of every frame into p.
func ObservePopulation(p *metrics.Population) Observer {
	return populationObserver{p: p}
}
