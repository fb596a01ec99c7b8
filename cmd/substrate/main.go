// Package main implements the entry point for the substrate runtime.
// It hosts the signal engine, serves health and metrics endpoints, and
// feeds stdin lines through the processing pipeline as JSON records.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cortexmesh/substrate/config"
	"github.com/cortexmesh/substrate/engine"
	"github.com/cortexmesh/substrate/metric"
)

// Build information constants
const (
	Version   = engine.Version
	BuildTime = "dev"
	appName   = "substrate"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override file values for logging
	if cliCfg.LogLevel != "" {
		cfg.Log.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Log.Format = cliCfg.LogFormat
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	slog.Info("Starting substrate",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	registry := metric.NewRegistry()
	eng := engine.New(cfg, logger, engine.WithMetrics(registry.Core))

	report, err := eng.Start()
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	slog.Info("Engine up",
		"sockets", len(report.Sockets),
		"collaborator", report.Collaborator)

	httpServer := startHTTPServer(cliCfg.HTTPAddr, eng, registry)

	return runWithSignalHandling(eng, httpServer, cliCfg.ShutdownTimeout)
}

// startHTTPServer serves /healthz and /metrics. A blank addr disables it.
func startHTTPServer(addr string, eng *engine.Engine, registry *metric.Registry) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		report := eng.Health()
		w.Header().Set("Content-Type", "application/json")
		if report.Status == "offline" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
	mux.Handle("/metrics", registry.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// processInput reads stdin line by line and prints one JSON record per
// line. It returns when stdin closes.
func processInput(eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		result, err := eng.ProcessText(line)
		if err != nil {
			slog.Error("Failed to process input", "error", err)
			continue
		}
		if err := encoder.Encode(result); err != nil {
			slog.Error("Failed to write record", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Input stream failed", "error", err)
	}
}

// runWithSignalHandling pumps stdin until EOF or a shutdown signal, then
// stops everything in order.
func runWithSignalHandling(eng *engine.Engine, httpServer *http.Server, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	inputDone := make(chan struct{})
	go func() {
		processInput(eng)
		close(inputDone)
	}()

	select {
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	case <-inputDone:
		slog.Info("Input stream closed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}

	eng.Stop()
	slog.Info("Substrate shutdown complete")
	return nil
}
