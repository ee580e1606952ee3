package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/gui"
	"github.com/san-kum/confetti/internal/transport"
	"github.com/san-kum/confetti/internal/transport/ws"
	"github.com/san-kum/confetti/internal/tui"
	"github.com/san-kum/confetti/internal/viz"
)

const (
	syncPath        = "/sync"
	shutdownTimeout = 2 * time.Second
)

// listen starts the panel sync server on --listen. With an empty address it
// returns a nil transport and render contexts fall back to a local pipe.
func listen(logger *log.Logger) (transport.Transport, func(), error) {
	if listenAddr == "" {
		return nil, func() {}, nil
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", listenAddr, err)
	}

	srv := ws.NewServer(logger)
	mux := http.NewServeMux()
	mux.Handle(syncPath, srv.Handler())
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("sync server: %v", err)
		}
	}()
	logger.Printf("panel sync on ws://%s%s", ln.Addr(), syncPath)

	stop := func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(ctx); err != nil {
			logger.Printf("sync server shutdown: %v", err)
		}
	}
	return srv, stop, nil
}

// prepare loads the stored configuration and applies --preset on top of it
// so the preset is persisted like any other update.
func prepare(ctx context.Context, r *bridge.Renderer) error {
	snap, err := presetSnapshot()
	if err != nil {
		return err
	}
	r.Prepare(ctx)
	for _, path := range snap.Keys() {
		r.Apply(ctx, path, snap[path])
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()
	opts, err := e.bridgeOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, stopServer, err := listen(e.logger)
	if err != nil {
		return err
	}
	defer stopServer()

	a := viz.NewApp(viz.Options{
		Tree:      config.Default(e.logger),
		Transport: tr,
		Bridge:    opts,
		Rand:      newRand(),
		Logger:    e.logger,
		Show:      !hidden,
	})
	if err := prepare(ctx, a.Renderer()); err != nil {
		return err
	}
	err = viz.Run(ctx, a)
	a.Renderer().Flush()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()
	opts, err := e.bridgeOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, stopServer, err := listen(e.logger)
	if err != nil {
		return err
	}
	defer stopServer()

	a := gui.NewApp(gui.Options{
		Tree:      config.Default(e.logger),
		Transport: tr,
		Bridge:    opts,
		Rand:      newRand(),
		Logger:    e.logger,
		Show:      !hidden,
	})
	if err := prepare(ctx, a.Renderer()); err != nil {
		return err
	}
	err = gui.Run(ctx, a)
	a.Renderer().Flush()
	return err
}

func runPanel(cmd *cobra.Command, args []string) error {
	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := ws.Dial(ctx, connectURL, e.logger)
	if err != nil {
		return fmt.Errorf("connect to render context: %w", err)
	}
	defer client.Close()

	ctx, cancel = context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-client.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	p := bridge.NewPanel(config.Default(e.logger), client, e.logger, e.debug)
	err = tui.Run(ctx, tui.NewModel(ctx, p))
	if errors.Is(err, tea.ErrProgramKilled) {
		select {
		case <-client.Done():
			fmt.Println("render context closed")
			return nil
		default:
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return err
}
