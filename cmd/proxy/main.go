// Command proxy runs the video-streaming adaptive-bitrate proxy:
//
//	proxy [-admin-addr addr] [-metrics-db path] <log> <alpha> <listen-port> <fake-ip> <dns-ip> <dns-port> [<www-ip>]
//
// The positional arguments are parsed by proxy.ParseArgs (spec.md §6); the
// flags configure the ambient admin API and are not part of the wire
// contract with any other process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kestrelnet/vcdn/internal/adminapi"
	"github.com/kestrelnet/vcdn/internal/logging"
	"github.com/kestrelnet/vcdn/internal/metrics"
	"github.com/kestrelnet/vcdn/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	adminAddr := flag.String("admin-addr", ":9090", "admin API listen address (empty disables it)")
	metricsDB := flag.String("metrics-db", "", "path to a SQLite file for fragment history (empty disables it)")
	jsonLogs := flag.Bool("json-logs", false, "enable JSON structured logging")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := proxy.ParseArgs(flag.Args())
	if err != nil {
		return err
	}

	level := "INFO"
	if *debug {
		level = "DEBUG"
	}
	logger := logging.Configure(logging.Config{
		Level:      level,
		Component:  "proxy",
		Structured: *jsonLogs,
	})

	activity, err := proxy.OpenActivityLog(cfg.LogFilename)
	if err != nil {
		return err
	}
	defer activity.Close()

	svc := proxy.NewService(cfg, activity, logger)

	var store *metrics.Store
	if *metricsDB != "" {
		store, err = metrics.Open(*metricsDB)
		if err != nil {
			return fmt.Errorf("proxy: open metrics store: %w", err)
		}
		defer store.Close()
		svc.SetMetricsStore(store)
	}

	if *adminAddr != "" {
		admin := adminapi.New(*adminAddr, adminapi.Deps{ProxyStats: svc.Snapshot, History: store}, logger)
		go func() {
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("admin API stopped", "error", err)
			}
		}()
		logger.Info("admin API listening", "addr", admin.Addr())
		defer shutdownAdminAPI(admin, logger)
	}

	if err := svc.Listen(); err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Bootstrap(); err != nil {
		return err
	}

	logger.Info("proxy ready", "listen_port", cfg.ListenPort)
	return svc.Run()
}

func shutdownAdminAPI(admin *adminapi.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := admin.Shutdown(ctx); err != nil {
		logger.Warn("admin API shutdown error", "error", err)
	}
}
