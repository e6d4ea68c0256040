package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"skabillium/memo/cmd/db"
)

const MemoVersion = "0.1.0"
const DefaultPort = "5678"
const DefaultHTTPPort = "8080"
const DefaultUser = "memo"
const DefaultPassword = "memo"

func main() {
	options, err := getServerOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, options)
	if err := run(options, logger); err != nil {
		logger.Error("memo server stopped", "err", err)
		os.Exit(1)
	}
}

func run(options *ServerOptions, logger *slog.Logger) error {
	linkage, err := options.DiaryLinkage()
	if err != nil {
		return err
	}

	var journal *Journal
	if options.JournalEnabled {
		journal, err = OpenJournal(options.JournalPath, logger)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	metrics := NewMetrics()
	hub := NewHub(logger)
	executor := NewExecutor(db.NewDatabase(linkage), options, journal, hub, metrics, logger)
	server := NewServer(net.JoinHostPort("localhost", options.Port), executor, metrics, logger)

	var api *API
	if options.HTTPPort != "" {
		var limiter *ClientLimiter
		if options.HTTPRate > 0 {
			limiter = NewClientLimiter(options.HTTPRate, options.HTTPBurst)
		}
		api = NewAPI(net.JoinHostPort("localhost", options.HTTPPort), executor, hub, limiter, metrics, logger)
		go func() {
			if err := api.Start(); err != nil {
				logger.Error("http api stopped", "err", err)
			}
		}()
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		logger.Info("shutting down", "signal", sig.String())
		if api != nil {
			api.Close()
		}
		server.Stop()
	}()

	return server.Start()
}
