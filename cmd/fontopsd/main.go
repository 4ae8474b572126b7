// Command fontopsd serves font subsets generated on demand.
//
// Usage:
//
//	fontopsd [-config fontops.yaml] [-listen :3000]
//
// SIGHUP reloads the font directory. SIGINT and SIGTERM shut down
// gracefully.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"github.com/jonwraymond/fontops/config"
	"github.com/jonwraymond/fontops/observe"
)

const shutdownGrace = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	var (
		flagConfig string
		flagListen string
	)
	flag.StringVar(&flagConfig, "config", os.Getenv("FONTOPS_CONFIG"), "path to the YAML configuration file")
	flag.StringVar(&flagListen, "listen", "", "listen address (overrides configuration)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fontopsd: %v\n", err)
		return 3
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "fontopsd: %v\n", err)
		return 3
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fontopsd: observe: %v\n", err)
		return 3
	}
	logger := obs.Logger()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := obs.Shutdown(sctx); err != nil {
			logger.Warn(sctx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}()

	app, err := newApp(ctx, cfg, obs)
	if err != nil {
		logger.Error(ctx, "startup failed", observe.Field{Key: "error", Value: err.Error()})
		return 1
	}

	go app.background(ctx)
	go reloadOnHangup(ctx, app)

	if err := serve(ctx, cfg, app.handler, logger); err != nil {
		logger.Error(ctx, "server failed", observe.Field{Key: "error", Value: err.Error()})
		return 1
	}
	return 0
}

// serve runs the HTTP server until ctx is done, then drains connections.
func serve(ctx context.Context, cfg config.Config, h http.Handler, logger observe.Logger) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		// Cold generations may run up to the request timeout.
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func reloadOnHangup(ctx context.Context, a *app) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.reload(ctx)
		}
	}
}
