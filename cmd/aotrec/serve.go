package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loykin/aotrec"
	"github.com/loykin/aotrec/internal/config"
	"github.com/loykin/aotrec/internal/logger"
	"github.com/loykin/aotrec/internal/metrics"
	"github.com/spf13/cobra"
)

func createServeCommand(f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recording daemon with the management HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f)
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&f.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&f.BasePath, "base-path", "", "API base path (overrides config)")
	cmd.Flags().StringVar(&f.StoreDSN, "store-dsn", "", "session store DSN (overrides config)")
	cmd.Flags().BoolVar(&f.NoStart, "no-start", false, "do not start the recording automatically")
	return cmd
}

func runServe(f *ServeFlags) error {
	cfg := config.Default()
	if f.ConfigPath != "" {
		var err error
		cfg, err = config.Load(f.ConfigPath)
		if err != nil {
			return err
		}
	}
	if f.Listen != "" {
		cfg.Server.Listen = f.Listen
	}
	if f.BasePath != "" {
		cfg.Server.BasePath = f.BasePath
	}
	if f.StoreDSN != "" {
		cfg.Store.DSN = f.StoreDSN
	}
	if f.NoStart {
		cfg.AutoStart = false
	}

	log := logger.New(cfg.Log.Logger())

	var rec *aotrec.Recorder
	if cfg.Disabled {
		rec = aotrec.NewDisabled()
		log.Warn("recording subsystem disabled by config")
	} else {
		rec = aotrec.New()
	}

	if cfg.Metrics.Enabled {
		if err := aotrec.RegisterMetricsDefault(); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	if cfg.Store.DSN != "" {
		st, err := aotrec.NewStoreFromDSN(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer func() { _ = st.Close() }()
		if err := rec.SetStore(st); err != nil {
			return fmt.Errorf("ensure store schema: %w", err)
		}
	}

	if cfg.History.ClickHouseAddr != "" {
		sink, err := aotrec.NewClickHouseSink(cfg.History.ClickHouseAddr, cfg.History.ClickHouseTable)
		if err != nil {
			return fmt.Errorf("connect history sink: %w", err)
		}
		rec.SetHistorySinks(sink)
	}

	if cfg.AutoStart && !cfg.Disabled {
		if err := rec.StartRecording(); err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", aotrec.NewHTTPHandler(cfg.Server.BasePath, rec))
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", metrics.Handler())
	}
	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("aotrec daemon listening", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	// End the recording (persisting the session) before the API goes away.
	if rec.EndRecording() {
		log.Info("recording ended on shutdown")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
