package main

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/storage"
)

var (
	dataDir    string
	storeKind  string
	seed       int64
	verbose    bool
	logFile    string
	listenAddr string
	connectURL string
	preset     string
	hidden     bool
	// bench
	frames      int
	benchWidth  float64
	benchHeight float64
	runs        int
	plotFile    string
	// script
	outDir string
)

const journalName = "journal.jsonl.zst"

func main() {
	rootCmd := &cobra.Command{
		Use:          "confetti",
		Short:        "drag-to-fire confetti with a live configuration panel",
		SilenceUsage: true,
		RunE:         runRender,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".confetti", "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", storage.KindFile, "configuration store (memory, file, file+zstd, sqlite)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug lines")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "log file (terminal modes log nowhere without it)")

	addRenderFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:7777", "panel sync address, empty to disable")
		cmd.Flags().StringVar(&preset, "preset", "", "apply a preset on start")
		cmd.Flags().BoolVar(&hidden, "hidden", false, "start with the confetti layer hidden")
	}
	addRenderFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "terminal render context",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addRenderFlags(renderCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "windowed render context with mouse and touch input",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addRenderFlags(guiCmd)

	panelCmd := &cobra.Command{
		Use:   "panel",
		Short: "configuration panel for a running render context",
		Args:  cobra.NoArgs,
		RunE:  runPanel,
	}
	panelCmd.Flags().StringVar(&connectURL, "connect", "ws://127.0.0.1:7777"+syncPath, "render context sync url")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "headless burst benchmark and integrator drift report",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 600, "frames on a 60 Hz clock")
	benchCmd.Flags().Float64Var(&benchWidth, "width", 800, "viewport width [px]")
	benchCmd.Flags().Float64Var(&benchHeight, "height", 600, "viewport height [px]")
	benchCmd.Flags().IntVar(&runs, "runs", 1, "parallel bursts with consecutive seeds")
	benchCmd.Flags().StringVar(&plotFile, "svg", "", "also write the population plot as svg")
	benchCmd.Flags().StringVar(&preset, "preset", "", "apply a preset")

	scriptCmd := &cobra.Command{
		Use:   "script <scenario.yaml>",
		Short: "play a scripted session headless and report each step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().StringVar(&outDir, "out", ".", "directory for snapshot files")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %d values\n", name, len(config.GetPreset(name)))
			}
			return nil
		},
	}

	rootCmd.AddCommand(renderCmd, guiCmd, panelCmd, benchCmd, scriptCmd, configCmd(), presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env holds what every command opens from the persistent flags.
type env struct {
	logger  *log.Logger
	debug   *log.Logger
	out     io.Closer
	store   storage.Store
	writer  *storage.Writer
	journal *storage.Journal
}

// openEnv sets up logging and opens the configuration store. Terminal modes
// pass quiet so log lines do not tear the screen unless --log is set.
func openEnv(quiet bool) (*env, error) {
	e := &env{}

	var w io.Writer = os.Stderr
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w, e.out = f, f
	case quiet:
		w = io.Discard
	}
	e.logger = log.New(w, "", log.LstdFlags)
	e.debug = log.New(io.Discard, "", 0)
	if verbose {
		e.debug = log.New(w, "debug: ", log.LstdFlags)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		e.Close()
		return nil, err
	}
	st, err := storage.Open(storeKind, dataDir)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = st
	return e, nil
}

// bridgeOptions starts the async writer and the update journal used by a
// render context.
func (e *env) bridgeOptions() (bridge.RendererOptions, error) {
	j, err := storage.OpenJournal(filepath.Join(dataDir, journalName))
	if err != nil {
		return bridge.RendererOptions{}, err
	}
	e.journal = j
	e.writer = storage.NewWriter(e.store, e.logger)
	return bridge.RendererOptions{
		Store:   e.store,
		Writer:  e.writer,
		Journal: e.journal,
		Logger:  e.logger,
		Debug:   e.debug,
	}, nil
}

func (e *env) Close() {
	if e.writer != nil {
		if err := e.writer.Close(); err != nil {
			e.logger.Printf("close writer: %v", err)
		}
	}
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			e.logger.Printf("close journal: %v", err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Printf("close store: %v", err)
		}
	}
	if e.out != nil {
		e.out.Close()
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// presetSnapshot returns the --preset snapshot, or nil when unset.
func presetSnapshot() (config.Snapshot, error) {
	if preset == "" {
		return nil, nil
	}
	snap := config.GetPreset(preset)
	if snap == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	return snap, nil
}
