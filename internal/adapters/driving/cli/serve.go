package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/aobun/internal/adapters/driven/archive"
	"github.com/custodia-labs/aobun/internal/adapters/driven/config/file"
	"github.com/custodia-labs/aobun/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/aobun/internal/adapters/driving/web"
	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/services"
	"github.com/custodia-labs/aobun/internal/logger"
	"github.com/custodia-labs/aobun/internal/normalisers/aozora"
	"github.com/custodia-labs/aobun/internal/normalisers/textenc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Start the upload web UI.

Settings come from the config file (see "aobun config show"). Changes to
[rate_limit], [results] ttl_seconds and [log] verbose are applied while the
server is running; other keys take effect on restart.

Examples:
  # Listen on the configured address (default 127.0.0.1:8501)
  aobun serve

  # Listen on all interfaces
  aobun serve --addr :8501`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	store, err := openConfigStore()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr == "" {
		addr = settings.Server.Addr
	}
	logger.SetVerbose(verbose || settings.Log.Verbose)

	server, results, err := newServer(settings)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchConfig(ctx, store, func(s domain.Settings) {
		server.ApplyRateLimit(s.RateLimit)
		results.SetTTL(s.Results.TTL())
		logger.SetVerbose(verbose || s.Log.Verbose)
	})

	logger.Section("aobun " + version)
	logger.Debug("config: %s", store.Path())
	return server.Run(ctx, addr)
}

// newServer wires the conversion pipeline into a web server.
func newServer(settings domain.Settings) (*web.Server, *memory.ResultStore, error) {
	results := memory.NewResultStore(settings.Results.TTL(), settings.Results.MaxEntries)
	conversion := services.NewConversionService(
		textenc.New(),
		aozora.New(),
		archive.NewZipCodec(settings.Archive),
	)

	server, err := web.NewServer(&web.Ports{
		Conversion: conversion,
		Results:    results,
	}, web.OptionsFromSettings(settings))
	if err != nil {
		return nil, nil, err
	}
	return server, results, nil
}

// watchConfig reloads settings in the background until ctx is done.
// Without a config directory there is nothing to watch.
func watchConfig(ctx context.Context, store *file.ConfigStore, apply func(domain.Settings)) {
	watcher, err := store.NewWatcher(file.DefaultDebounce)
	if err != nil {
		logger.Debug("config reload disabled: %v", err)
		return
	}

	go func() {
		defer watcher.Close()
		if err := watcher.Run(ctx, apply); err != nil {
			logger.Warn("config watcher stopped: %v", err)
		}
	}()
}
