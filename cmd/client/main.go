// Package main is the terminal client of the community app. It signs in
// with an emailed one-time password and then browses the feed, posts and
// the member profile from an interactive shell.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/api"
	"github.com/atinyakov/DigitalHouse/internal/client/credential"
	"github.com/atinyakov/DigitalHouse/internal/client/media"
	"github.com/atinyakov/DigitalHouse/internal/client/transport"
	"github.com/atinyakov/DigitalHouse/internal/config"
	"github.com/atinyakov/DigitalHouse/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	opts, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.ShowVersion {
		fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
		fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), opts, log.Log); err != nil {
		log.Log.Error("client stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *config.Options, zapLogger *zap.Logger) error {
	creds, closeCreds, err := credential.Open(ctx, opts, zapLogger)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer func() { _ = closeCreds() }()

	tc, err := transport.New(opts.APIURL, creds,
		transport.WithTimeout(opts.Timeout),
		transport.WithLogger(zapLogger),
		transport.WithRootCAs(opts.CAFile),
	)
	if err != nil {
		return err
	}

	uploadClient, err := transport.NewHTTPClient(opts.CAFile, media.DefaultUploadTimeout)
	if err != nil {
		return err
	}

	sh := newShell(api.New(tc), creds, media.NewUploader(uploadClient, zapLogger), opts.APIURL, os.Stdout, zapLogger)
	fmt.Printf("Digital House client, talking to %s\n", opts.APIURL)
	return sh.Run(ctx, os.Stdin)
}
