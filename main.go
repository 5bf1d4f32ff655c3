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
	"time"

	"PDFMarkup/internal/config"
	"PDFMarkup/internal/export"
	"PDFMarkup/internal/kinds"
	"PDFMarkup/internal/logging"
	bridge "PDFMarkup/internal/net"
	"PDFMarkup/internal/pdfdoc"
	"PDFMarkup/internal/render"
	"PDFMarkup/internal/state"
	"PDFMarkup/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pdfmarkup:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.Path(), "path of the JSON config file")
		addr       = flag.String("addr", "", "websocket bridge listen address (\"off\" disables it)")
		advertise  = flag.Bool("advertise", false, "publish the bridge over mDNS")
		fontPath   = flag.String("font", "", "TrueType font file used for exported text")
		fontURL    = flag.String("font-url", "", "URL of the TrueType font used for exported text")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.pdf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "advertise":
			cfg.Advertise = *advertise
		case "font":
			cfg.FontPath = *fontPath
		case "font-url":
			cfg.FontURL = *fontURL
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	log := logging.For("main")

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		return err
	}

	reg, err := kinds.NewRegistry(kinds.Options{TextSize: cfg.TextSize})
	if err != nil {
		return err
	}
	fonts := export.NewFontCache(export.SourceFor(cfg.FontURL, cfg.FontPath))
	exporter := export.NewExporter(pdfdoc.Opener{}, export.NewTransformer(fonts))
	session := state.NewSession(reg, pdfdoc.Opener{}, exporter, cfg.DefaultColor)
	editor := ui.NewEditorWidget(session, render.NewProjector(reg))

	var shareLink string
	if cfg.Addr != "" && cfg.Addr != "off" {
		stop, link, err := serveBridge(session, cfg)
		if err != nil {
			log.Error("bridge disabled", "err", err)
		} else {
			defer stop()
			shareLink = link
		}
	}

	ui.RunApp(editor, ui.Options{
		Title:     "PDF Markup - " + flag.Arg(0),
		Width:     cfg.WindowWidth,
		Height:    cfg.WindowHeight,
		ShareLink: shareLink,
		Source:    src,
	})
	return nil
}

// serveBridge starts the websocket bridge and, when configured, its mDNS
// advertisement. stop tears both down.
func serveBridge(session *state.Session, cfg config.Config) (stop func(), link string, err error) {
	log := logging.For("main")
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	b := bridge.NewBridge(session)
	mux := http.NewServeMux()
	mux.Handle("/ws", b)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("bridge server stopped", "err", err)
		}
	}()
	link = fmt.Sprintf("ws://%s:%d/ws", bridge.OutgoingIP(), port)
	log.Info("bridge listening", "addr", ln.Addr().String(), "link", link)

	var shutdownMDNS func() error
	if cfg.Advertise {
		server, err := bridge.Advertise(port)
		if err != nil {
			log.Warn("mDNS advertisement failed", "err", err)
		} else {
			shutdownMDNS = server.Shutdown
		}
	}

	stop = func() {
		if shutdownMDNS != nil {
			shutdownMDNS()
		}
		b.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return stop, link, nil
}
