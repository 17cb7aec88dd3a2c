package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ScribbleBoard/internal/config"
	boardnet "ScribbleBoard/internal/net"
	"ScribbleBoard/internal/state"
	"ScribbleBoard/internal/ui"
)

// fetchTimeout bounds the initial document download in client mode.
const fetchTimeout = 10 * time.Second

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	listen := flag.String("listen", "", "the address the relay listens on in host mode")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	doc := flag.String("doc", "", "the shared document to open")
	discover := flag.Bool("discover", false, "join the first board found on the local network")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [%s://host:port]\n", os.Args[0], boardnet.LinkScheme)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *doc != "" {
		cfg.Doc = *doc
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case flag.NArg() > 0:
		return runClient(ctx, cfg, flag.Arg(0))
	case *discover:
		slog.Info("looking for boards")
		board, err := boardnet.Discover(ctx)
		if err != nil {
			return err
		}
		if board.Doc != "" && *doc == "" {
			cfg.Doc = board.Doc
		}
		return runClient(ctx, cfg, board.Link())
	}
	return runHost(ctx, cfg)
}

func runHost(ctx context.Context, cfg config.Config) error {
	slog.Info("starting as host", "listen", cfg.Listen, "doc", cfg.Doc)
	relay, err := boardnet.NewRelay(boardnet.RelayOptions{
		Database:     cfg.Database,
		Docs:         []string{cfg.Doc},
		SyncInterval: cfg.SyncInterval.Duration,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := relay.Close(); err != nil {
			slog.Error("failed to close relay", "err", err)
		}
	}()
	notes, err := relay.Doc(cfg.Doc)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	httpServer := &http.Server{Handler: relay.Handler()}

	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen failed", "err", err)
		}
	}()
	defer wg.Wait()
	defer httpServer.Close()

	if cfg.Advertise {
		mdnsServer, err := boardnet.Advertise(port, cfg.Doc)
		if err != nil {
			slog.Warn("not advertising on the local network", "err", err)
		} else {
			defer mdnsServer.Shutdown()
		}
	}

	ip, _ := boardnet.GetOutgoingIP()
	link := boardnet.ShareLink(ip, port)
	slog.Info("hosting", "link", link)

	ui.RunApp(ctx, ui.Options{
		Title:     "ScribbleBoard (host)",
		ShareLink: link,
		Status:    "Hosting " + cfg.Doc,
		Surface:   cfg.SurfaceOptions(),
		Notes:     notes,
	})
	return nil
}

func runClient(ctx context.Context, cfg config.Config, link string) error {
	slog.Info("starting as client", "link", link, "doc", cfg.Doc)
	client, err := boardnet.NewClient(link, cfg.Doc)
	if err != nil {
		return err
	}
	client.SyncInterval = cfg.SyncInterval.Duration
	client.RetryInterval = cfg.RetryInterval.Duration

	fetchCtx, cancelFetch := context.WithTimeout(ctx, fetchTimeout)
	raw, err := client.Fetch(fetchCtx)
	cancelFetch()
	if err != nil {
		return err
	}
	notes, err := state.LoadSharedText(raw, state.NewActorID())
	if err != nil {
		return err
	}
	slog.Info("established base doc", "heads", notes.Heads())

	runCtx, stop := context.WithCancel(ctx)
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := client.Run(runCtx, notes); err != nil {
			slog.Error("sync stopped", "err", err)
		}
	}()

	ui.RunApp(ctx, ui.Options{
		Title:     "ScribbleBoard",
		ShareLink: link,
		Status:    "Joined " + cfg.Doc,
		Surface:   cfg.SurfaceOptions(),
		Notes:     notes,
	})
	stop()
	wg.Wait()
	return nil
}
