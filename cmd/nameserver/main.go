// Command nameserver runs the video.cs.cmu.edu nameserver:
//
//	nameserver [-admin-addr addr] [-r] <log> <ip> <port> <servers-file> <lsa-file>
//
// The positional arguments (after any admin flags) are parsed by
// nameserver.ParseArgs (spec.md §6); -admin-addr configures the ambient
// admin API and is not part of the wire contract with the proxy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kestrelnet/vcdn/internal/adminapi"
	"github.com/kestrelnet/vcdn/internal/logging"
	"github.com/kestrelnet/vcdn/internal/nameserver"
	"github.com/kestrelnet/vcdn/internal/topology"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	adminAddr := flag.String("admin-addr", ":9091", "admin API listen address (empty disables it)")
	jsonLogs := flag.Bool("json-logs", false, "enable JSON structured logging")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := nameserver.ParseArgs(flag.Args())
	if err != nil {
		return err
	}

	level := "INFO"
	if *debug {
		level = "DEBUG"
	}
	logger := logging.Configure(logging.Config{
		Level:      level,
		Component:  "nameserver",
		Structured: *jsonLogs,
	})

	servers, err := nameserver.LoadServers(cfg.ServersFile)
	if err != nil {
		return err
	}

	var graph *topology.Graph
	if cfg.Mode == nameserver.ModeGeo {
		store := topology.NewStore()
		if err := nameserver.LoadLSAs(cfg.LSAFile, store); err != nil {
			return err
		}
		graph = store.BuildGraph()
	}

	activity, err := nameserver.OpenActivityLog(cfg.LogFilename)
	if err != nil {
		return err
	}
	defer activity.Close()

	svc := nameserver.NewService(cfg, servers, graph, activity, logger)

	if *adminAddr != "" {
		admin := adminapi.New(*adminAddr, adminapi.Deps{NameserverStats: svc.Snapshot}, logger)
		go func() {
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("admin API stopped", "error", err)
			}
		}()
		logger.Info("admin API listening", "addr", admin.Addr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := admin.Shutdown(ctx); err != nil {
				logger.Warn("admin API shutdown error", "error", err)
			}
		}()
	}

	fd, err := nameserver.Listen(cfg.ListenIP, cfg.ListenPort)
	if err != nil {
		return err
	}
	server := nameserver.NewServer(fd, svc, logger)
	defer server.Close()

	logger.Info("nameserver ready", "ip", cfg.ListenIP, "port", cfg.ListenPort, "mode", cfg.Mode)
	return server.Run()
}
