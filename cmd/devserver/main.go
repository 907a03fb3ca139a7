// Package main runs the development backend: an in-memory, seeded
// implementation of the community API for exercising the client locally.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/DigitalHouse/internal/certgen"
	"github.com/atinyakov/DigitalHouse/internal/config"
	"github.com/atinyakov/DigitalHouse/internal/logger"
	"github.com/atinyakov/DigitalHouse/internal/repository"
	"github.com/atinyakov/DigitalHouse/internal/server"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(options, log.Log); err != nil {
		log.Log.Fatal("devserver stopped", zap.Error(err))
	}
}

func run(options *config.ServerOptions, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewMemory()
	if err := repository.Seed(ctx, store, options.Seed, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	zapLogger.Info("store seeded",
		zap.Int("posts", options.Seed),
		zap.String("demo_account", repository.DemoEmail),
		zap.String("admin_account", repository.AdminEmail),
	)

	repository.StartOTPSweeper(ctx, store, sweepInterval, zapLogger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router, err := server.NewHandler(store, options, reg, zapLogger)
	if err != nil {
		return err
	}

	srv := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLS {
		cfg, err := tlsConfig(options)
		if err != nil {
			return err
		}
		srv.TLSConfig = cfg
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("starting server",
			zap.String("addr", options.Addr),
			zap.Bool("tls", options.TLS),
			zap.String("public_url", options.PublicURL),
		)
		var err error
		if options.TLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zapLogger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// tlsConfig loads the server key pair, generating a development PKI next
// to it when the files do not exist yet.
func tlsConfig(options *config.ServerOptions) (*tls.Config, error) {
	if _, err := os.Stat(options.CertFile); errors.Is(err, os.ErrNotExist) {
		dir := filepath.Dir(options.CertFile)
		if err := certgen.WriteDevPKI(dir, "localhost", "127.0.0.1"); err != nil {
			return nil, fmt.Errorf("generate dev certificates: %w", err)
		}
		options.CertFile = filepath.Join(dir, certgen.ServerCertFile)
		options.KeyFile = filepath.Join(dir, certgen.ServerKeyFile)
	}
	cert, err := tls.LoadX509KeyPair(options.CertFile, options.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load server TLS cert/key: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
