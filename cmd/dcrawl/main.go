// Command dcrawl is the CLI entry point spec.md §1 and §6 describe as an
// external collaborator: a thin wrapper that parses sid/cid/url/keyword/
// target, resolves a run via pkg/dcconfig, and dispatches by crawler code
// to a site-specific dcengine.Runner. Grounded on the teacher's
// cmd/doc-scraper/main.go flag.NewFlagSet-per-subcommand, signal-driven
// graceful shutdown, and config-then-components construction order.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kimjiho/dcrawl/pkg/dcconfig"
	"github.com/kimjiho/dcrawl/pkg/dcengine"
	"github.com/kimjiho/dcrawl/pkg/dcrepo"
	"github.com/kimjiho/dcrawl/pkg/ruliwebengine"
	"github.com/kimjiho/dcrawl/pkg/ytengine"
	"github.com/kimjiho/dcrawl/storage/badgerstore"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCrawl(os.Args[2:]))
	case "version":
		fmt.Printf("dcrawl %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stdout, `dcrawl - Korean community site crawler

Usage:
  dcrawl run [options]
  dcrawl version

Run 'dcrawl run -h' for option details.`)
}

// runCrawl parses flags, resolves a RunConfig, and dispatches to the
// engine selected by crawler code. Returns the process exit code.
func runCrawl(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	sid := fs.String("sid", "", "scenario id (required)")
	cid := fs.String("cid", "", "crawler code (required)")
	rawURL := fs.String("url", "", "explicit start URL")
	keyword := fs.String("keyword", "", "search keyword (keyword mode)")
	target := fs.String("target", "", "target gallery id")
	storageDir := fs.String("storage-dir", "./dcrawl-data", "badger db directory")
	logLevel := fs.String("loglevel", "info", "log level (debug, info, warn, error, fatal)")
	httpTimeout := fs.Duration("http-timeout", 10*time.Second, "per-request HTTP timeout")
	maxRetries := fs.Int("max-retries", 3, "max retry attempts per request")
	heartbeat := fs.Duration("heartbeat", 15*time.Second, "heartbeat log interval")
	rehydrate := fs.Bool("rehydrate", true, "rehydrate recently-persisted posts before the listing walk")
	ytCode := fs.String("yt-crawler-code", "", "crawler code reserved for the YouTube stub engine")
	ruliwebCode := fs.String("ruliweb-crawler-code", "", "crawler code reserved for the Ruliweb stub engine")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dcrawl run [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	log := setupLogger(*logLevel)

	opts := dcconfig.RunOptions{
		ScenarioID:  *sid,
		CrawlerCode: *cid,
		URL:         *rawURL,
		Keyword:     *keyword,
		Target:      *target,
	}
	runCfg, err := dcconfig.NewRunConfig(opts, dcconfig.OSEnvironment{}, time.Now())
	if err != nil {
		log.Errorf("config error: %v", err)
		return 1
	}
	log.WithFields(logrus.Fields{
		"scenario": runCfg.ScenarioID,
		"cid":      runCfg.CrawlerCode,
		"mode":     runCfg.Mode,
		"firstURL": runCfg.FirstURL,
	}).Info("resolved run configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var cancelled atomic.Bool

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warnf("received signal %v, stopping after the current item", sig)
		cancelled.Store(true)
		cancel()
	}()
	defer signal.Stop(sigChan)

	runner, cleanup, err := buildRunner(runCfg, log, buildRunnerOptions{
		storageDir:  filepath.Clean(*storageDir),
		httpTimeout: *httpTimeout,
		maxRetries:  *maxRetries,
		heartbeat:   *heartbeat,
		rehydrate:   *rehydrate,
		ytCode:      *ytCode,
		ruliwebCode: *ruliwebCode,
		shouldCancel: func() bool {
			return cancelled.Load()
		},
	})
	if err != nil {
		log.Errorf("setup error: %v", err)
		return 1
	}
	defer cleanup()

	if err := runner.StartCrawling(ctx); err != nil {
		log.Errorf("crawl finished with error: %v", err)
		return 1
	}

	log.Info("crawl completed")
	return 0
}

type buildRunnerOptions struct {
	storageDir   string
	httpTimeout  time.Duration
	maxRetries   int
	heartbeat    time.Duration
	rehydrate    bool
	ytCode       string
	ruliwebCode  string
	shouldCancel func() bool
}

// buildRunner dispatches by crawler code to a site-specific engine,
// mirroring the source dispatcher spec.md §1 treats as an external
// collaborator specified only by the dcengine.Runner interface it
// returns. Codes reserved via -yt-crawler-code/-ruliweb-crawler-code
// route to their stub engines; everything else is a DCInside run.
func buildRunner(runCfg dcconfig.RunConfig, log *logrus.Logger, opts buildRunnerOptions) (dcengine.Runner, func(), error) {
	noop := func() {}

	if opts.ytCode != "" && runCfg.CrawlerCode == opts.ytCode {
		return ytengine.New(ytengine.Options{ScenarioID: runCfg.ScenarioID, Log: log}), noop, nil
	}
	if opts.ruliwebCode != "" && runCfg.CrawlerCode == opts.ruliwebCode {
		return ruliwebengine.New(ruliwebengine.Options{ScenarioID: runCfg.ScenarioID, Log: log}), noop, nil
	}

	store, err := badgerstore.Open(opts.storageDir, log.WithField("component", "badgerdb"))
	if err != nil {
		return nil, noop, err
	}

	var repo dcrepo.Repository = store
	engine := dcengine.New(dcengine.Options{
		Config:            runCfg,
		Repo:              repo,
		HTTPTimeout:       opts.httpTimeout,
		MaxRetries:        opts.maxRetries,
		HeartbeatInterval: opts.heartbeat,
		RehydrateEnabled:  opts.rehydrate,
		Log:               log,
	}).WithCancellation(opts.shouldCancel)

	return engine, func() { store.Close() }, nil
}

func setupLogger(levelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		log.Warnf("invalid log level '%s', using default 'info': %v", levelStr, err)
	} else {
		log.SetLevel(level)
	}
	return log
}
