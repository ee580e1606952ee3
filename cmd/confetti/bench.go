package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/export"
	"github.com/san-kum/confetti/internal/integrators"
	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/sim"
)

func runBench(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree := config.Default(e.debug)
	snap, err := presetSnapshot()
	if err != nil {
		return err
	}
	tree.ApplyAll(snap)
	for _, err := range tree.Validate() {
		fmt.Printf("warning: %v\n", err)
	}

	fmt.Printf("benchmarking a burst on %.0fx%.0f for %d frames\n\n", benchWidth, benchHeight, frames)
	res := sim.RunBurst(tree, benchWidth, benchHeight, frames, seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tSPAWNED\tPEAK\tLEFT\tTIME\tFRAMES/SEC")
	printBurst(w, res)
	w.Flush()
	fmt.Println()

	if len(res.History) > 1 {
		fmt.Println(asciigraph.Plot(res.History,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("live papers per frame"),
		))
		fmt.Println()
	}
	if plotFile != "" {
		svg := export.HistoryToSVG(res.History, 800, 240, "#ff6b6b")
		if err := os.WriteFile(plotFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n\n", plotFile)
	}

	if runs > 1 {
		if err := ensembleReport(cmd.Context(), tree); err != nil {
			return err
		}
	}

	return driftReport(tree)
}

func printBurst(w io.Writer, r sim.BurstResult) {
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%v\t%.0f\n",
		r.Seed, r.Frames, r.Spawned, r.Peak, r.Left, r.Elapsed.Round(time.Microsecond), float64(r.Frames)/r.Elapsed.Seconds())
}

// ensembleReport runs --runs bursts in parallel with consecutive seeds.
func ensembleReport(ctx context.Context, tree *config.Tree) error {
	start := time.Now()
	results, err := sim.RunEnsemble(ctx, tree, benchWidth, benchHeight, frames, runs, seed)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("ensemble of %d runs in %v\n", runs, elapsed.Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tSPAWNED\tPEAK\tLEFT\tTIME\tFRAMES/SEC")
	spawned := 0
	for _, r := range results {
		printBurst(w, r)
		spawned += r.Spawned
	}
	w.Flush()
	fmt.Printf("mean burst: %.1f papers\n\n", float64(spawned)/float64(len(results)))
	return nil
}

// driftReport compares stepped integrators against the closed-form
// trajectory of a paper fired at the maximum configured speed.
func driftReport(tree *config.Tree) error {
	drag := physics.Drag{G: tree.Scalar(config.KeyGravity), VT: tree.Scalar(config.KeyTerminalVelocity)}
	if drag.G <= 0 || drag.VT <= 0 {
		return fmt.Errorf("drift needs positive gravity and terminal velocity, got %v and %v", drag.G, drag.VT)
	}
	_, speed := tree.Range(config.KeyLength).Bounds()
	_, mult := tree.Range(config.KeyMultiplier).Bounds()
	v0 := physics.Launch(speed*mult, 60)
	duration := tree.Scalar(config.KeyFadeT1)

	steppers := []struct {
		name string
		s    integrators.Stepper
	}{
		{"euler", integrators.NewEuler()},
		{"rk4", integrators.NewRK4()},
	}

	fmt.Printf("drift against the closed form over %.1fs\n", duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tDT\tMAX DRIFT [px]")
	for _, st := range steppers {
		for _, dt := range []float64{1.0 / 30, 1.0 / 60, 1.0 / 120} {
			d := integrators.Drift(st.s, drag, physics.Vec2{}, v0, duration, dt)
			fmt.Fprintf(w, "%s\t%.4fs\t%.6f\n", st.name, dt, d)
		}
	}
	return w.Flush()
}
