package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/confetti/internal/automation"
)

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := loadTree(e)
	if err != nil {
		return err
	}
	runner := &automation.Runner{Tree: tree, Seed: seed, OutDir: outDir, Logger: e.debug}

	name := sc.Name
	if name == "" {
		name = args[0]
	}
	fmt.Printf("running %s (%d steps)\n\n", name, len(sc.Steps))

	rep, err := runner.Run(cmd.Context(), sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tLIVE\tERROR")
	failed := 0
	for _, st := range rep.Steps {
		msg := "-"
		if st.Err != nil {
			msg = st.Err.Error()
			failed++
		}
		fmt.Fprintf(w, "%v\t%s\t%d\t%s\n", st.Time.Round(time.Millisecond), st.Step.Action, st.Live, msg)
	}
	w.Flush()

	fmt.Printf("\n%d frames, %d spawned, peak %d\n", rep.Frames, rep.Spawned, rep.Peak)
	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(rep.Steps))
	}
	return nil
}
