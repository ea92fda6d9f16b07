package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/codefionn/chatwire/internal/chatserver"
	"github.com/codefionn/chatwire/internal/config"
	"github.com/codefionn/chatwire/internal/consts"
	"github.com/codefionn/chatwire/internal/logger"
	"github.com/codefionn/chatwire/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to JSON config file")
	httpAddr := fs.String("http", "", "enable the websocket gateway on this address, e.g. :8936")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error, none)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: server [flags] <port>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one port argument")
	}
	port, err := strconv.Atoi(fs.Arg(0))
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", fs.Arg(0))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return err
	}
	defer logger.Global().Close()

	server := chatserver.NewServer(cfg, port)
	if err := server.Listen(); err != nil {
		return err
	}

	var gateway *web.Gateway
	if cfg.HTTPAddr != "" {
		gateway = web.NewGateway(cfg, server.Registry())
		gateway.Start()
	}

	// re-apply the log level when the config file changes
	if *configPath != "" {
		stopWatch, err := config.Watch(*configPath, func(next *config.Config) {
			level := logger.ParseLevel(next.LogLevel)
			if level == logger.Global().GetLevel() {
				return
			}
			logger.SetLevel(level)
			logger.Info("Log level changed to %s", level)
		})
		if err != nil {
			logger.Warn("Config watch disabled: %v", err)
		} else {
			defer stopWatch()
		}
	}

	// shut down on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received signal %v, shutting down", sig)
		if gateway != nil {
			ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout5Seconds)
			defer cancel()
			gateway.Stop(ctx)
		}
		server.Stop()
	}()

	return server.Serve()
}
