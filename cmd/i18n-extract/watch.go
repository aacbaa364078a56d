package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v2"

	"github.com/DeusData/i18n-extract/internal/store"
	"github.com/DeusData/i18n-extract/internal/tools"
	"github.com/DeusData/i18n-extract/internal/watcher"
)

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	rec, err := newRecorder(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, stop := signalContext(c)
	defer stop()

	asJSON := c.Bool("json")
	var recordErr error
	w := watcher.New(watcher.Options{
		Pipeline: opts,
		Notify:   !c.Bool("no-notify"),
		Interval: c.Duration("interval"),
		OnRun: func(ev watcher.Event) {
			if !ev.Changed() {
				return
			}
			if err := printResult(c.App.Writer, c.App.ErrWriter, cfg, ev.Result, asJSON); err != nil {
				slog.Warn("watch.print", "err", err)
			}
			if err := rec.Record(ev.Result); err != nil {
				recordErr = err
				stop()
			}
		},
	})
	slog.Info("watch.start", "base", cfg.Base)
	if err := w.Run(ctx); err != nil {
		return err
	}
	return recordErr
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.Database != "" {
		st, err = store.OpenPath(cfg.Database)
	} else {
		st, err = store.Open()
	}
	if err != nil {
		return fmt.Errorf("store open err=%w", err)
	}
	defer st.Close()

	ctx, stop := signalContext(c)
	defer stop()

	srv := tools.NewServer(st, opts)
	slog.Info("serve.start", "db", st.Path(), "base", opts.Base)
	if err := srv.MCPServer().Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server err=%w", err)
	}
	return nil
}
