// File: cmd/canvasd/serve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/momentics/hioload-canvas/api"
	"github.com/momentics/hioload-canvas/canvas"
	"github.com/momentics/hioload-canvas/control"
	"github.com/momentics/hioload-canvas/server"
)

type serveFlags struct {
	configPath string
	listen     string
	admin      string
	snapshot   string
	page       string
	fps        int
	maxWidth   int
	maxHeight  int
	logLevel   string
	logFormat  string
}

func serveCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept a browser and stream the canvas to it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, &f)
			if err != nil {
				return err
			}
			logger, err := newLogger(os.Stderr, f.logLevel, f.logFormat)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&f.listen, "listen", "", "websocket listen address")
	flags.StringVar(&f.admin, "admin", "", "admin listen address for /metrics and /debug/state")
	flags.StringVar(&f.snapshot, "snapshot", "", "image file to stream (re-read every frame)")
	flags.StringVar(&f.page, "page", "", "HTML page served to browsers instead of the built-in one")
	flags.IntVar(&f.fps, "fps", 0, "snapshots published per second")
	flags.IntVar(&f.maxWidth, "max-width", 0, "downscale wider snapshots")
	flags.IntVar(&f.maxHeight, "max-height", 0, "downscale taller snapshots")
	flags.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", "text", "text or json")
	return cmd
}

// resolveConfig layers explicitly set flags over the config file.
func resolveConfig(cmd *cobra.Command, f *serveFlags) (*server.Config, error) {
	cfg := server.DefaultConfig()
	if f.configPath != "" {
		loaded, err := server.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = f.listen
	}
	if flags.Changed("admin") {
		cfg.AdminAddr = f.admin
	}
	if flags.Changed("snapshot") {
		cfg.SnapshotPath = f.snapshot
	}
	if flags.Changed("page") {
		cfg.PagePath = f.page
	}
	if flags.Changed("fps") {
		cfg.FrameRate = f.fps
	}
	if flags.Changed("max-width") {
		cfg.MaxWidth = f.maxWidth
	}
	if flags.Changed("max-height") {
		cfg.MaxHeight = f.maxHeight
	}
	return cfg, cfg.Validate()
}

func newLogger(w *os.File, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func runServe(ctx context.Context, cfg *server.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := control.NewMetrics(control.WithRegistry(reg))

	b, err := server.New(cfg, server.WithLogger(logger), server.WithMetrics(metrics))
	if err != nil {
		return err
	}
	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	b.RegisterProbes(probes)

	var src api.SnapshotSource = newKeyboardCanvas()
	if cfg.SnapshotPath != "" {
		src = canvas.FileSource{Path: cfg.SnapshotPath}
	}
	logger.Info("open the page in a browser", "url", "http://"+b.Addr().String()+"/")

	g, gctx := errgroup.WithContext(ctx)
	if cfg.AdminAddr != "" {
		admin := &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           control.NewAdminRouter(reg, probes),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("admin listening", "addr", cfg.AdminAddr)
			if err := admin.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return admin.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return b.Close()
	})
	g.Go(func() error {
		return hostLoop(gctx, b, src, cfg.FrameRate, logger)
	})
	return g.Wait()
}

// hostLoop plays the local program: it polls keystrokes and publishes the
// canvas at most fps times per second until ctx ends.
func hostLoop(ctx context.Context, b *server.Bridge, src api.SnapshotSource, fps int, logger *slog.Logger) error {
	if err := b.Accept(ctx); err != nil {
		if ctx.Err() != nil || errors.Is(err, api.ErrTransportClosed) {
			return nil
		}
		return err
	}
	keys, _ := src.(keySink)
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		for b.HasKeyTyped() {
			r, err := b.NextKeyTyped()
			if err != nil {
				break
			}
			logger.Info("key typed", "key", string(r), "session", b.SessionID())
			if keys != nil {
				keys.Type(r)
			}
		}
		b.SendCanvas(src)
		if b.State() == api.StateClosed {
			return nil
		}
	}
}
