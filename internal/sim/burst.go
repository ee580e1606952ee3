package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/metrics"
)

// FrameStep is the virtual clock step of headless runs.
const FrameStep = time.Second / 60

// BurstResult summarizes one headless autofire burst.
type BurstResult struct {
	Seed    int64
	Frames  int
	Spawned int
	Peak    int
	Left    int
	Elapsed time.Duration
	History []float64
}

// RunBurst autofires once into a w x h headless viewport and advances frames
// frames on a 60 Hz virtual clock. cfg is only read.
func RunBurst(cfg *config.Tree, w, h float64, frames int, seed int64) BurstResult {
	queue := NewFrameQueue()
	loop := New(cfg, queue, Headless{W: w, H: h}, rand.New(rand.NewSource(seed)), nil)
	pop := metrics.NewPopulation(frames)
	loop.AddObserver(ObservePopulation(pop))

	loop.Start()
	pop.Spawned(loop.Autofire())

	res := BurstResult{Seed: seed}
	start := time.Now()
	for i := 0; i < frames; i++ {
		res.Frames += queue.Fire(time.Duration(i) * FrameStep)
	}
	res.Elapsed = time.Since(start)
	loop.Stop()

	res.Spawned = pop.Total()
	res.Peak = pop.Peak()
	res.Left = loop.Len()
	res.History = pop.History()
	return res
}

// RunEnsemble runs n bursts with consecutive seeds from seedStart in
// parallel. Each run gets its own copy of cfg. Results are in seed order.
func RunEnsemble(ctx context.Context, cfg *config.Tree, w, h float64, frames, n int, seedStart int64) ([]BurstResult, error) {
	results := make([]BurstResult, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int, tree *config.Tree) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			results[idx] = RunBurst(tree, w, h, frames, seedStart+int64(idx))
		}(i, cfg.Clone())
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
