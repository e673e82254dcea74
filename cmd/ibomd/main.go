// Command ibomd serves the works registry and revenue pools over JSON-RPC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfsorg/libibom-go/api"
	"github.com/bitfsorg/libibom-go/config"
	"github.com/bitfsorg/libibom-go/ledger"
	"github.com/bitfsorg/libibom-go/logging"
	"github.com/bitfsorg/libibom-go/metrics"
	"github.com/bitfsorg/libibom-go/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ibomd:", err)
		os.Exit(1)
	}
}

// run parses flags, opens the ledger and serves until ctx is done.
func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) error {
	fs := flag.NewFlagSet("ibomd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var dataDir, cfgPath string
	var initOnly bool
	fs.StringVar(&dataDir, "datadir", "", "data directory (default ~/.ibom)")
	fs.StringVar(&cfgPath, "config", "", "config file (default <datadir>/config.toml)")
	fs.BoolVar(&initOnly, "init", false, "write a default config file and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, path, err := loadConfig(dataDir, cfgPath, getenv)
	if err != nil {
		return err
	}
	if initOnly {
		if err := config.SaveConfig(path, cfg); err != nil {
			return err
		}
		fmt.Fprintln(stderr, "wrote", path)
		return nil
	}

	logger := logging.Setup(logging.Options{
		Service:   "ibomd",
		Env:       cfg.Network,
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
	})

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder("ibom")
	}

	db, err := store.OpenBolt(cfg.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	l := ledger.New(db,
		ledger.WithLogger(logger),
		ledger.WithMetrics(recorder),
		ledger.WithFaucet(cfg.Faucet),
	)
	srv := api.NewServer(l, api.Options{
		ServiceName:  "ibomd",
		APIKey:       cfg.APIKey,
		MaxClockSkew: cfg.MaxClockSkew(),
		Logger:       logger,
		Metrics:      recorder,
	})
	return serve(ctx, cfg.ListenAddr, srv, logger)
}

// loadConfig resolves the config path, reads it when present and applies the
// environment. A missing file is not an error.
func loadConfig(dataDir, cfgPath string, getenv func(string) string) (config.Config, string, error) {
	if dataDir == "" {
		dataDir = getenv(config.EnvDataDir)
	}
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	if cfgPath == "" {
		cfgPath = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return cfg, cfgPath, err
	}
	cfg.DataDir = dataDir
	config.ApplyEnv(&cfg, getenv)
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, cfgPath, err
	}
	return cfg, cfgPath, nil
}

func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
