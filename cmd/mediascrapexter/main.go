// cmd/mediascrapexter/main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/monitoring"
	"github.com/valpere/MediaScrapexter/internal/utils"
	"github.com/valpere/MediaScrapexter/internal/worker"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "run":
		requireConfigArg(command)
		runService(os.Args[2], false)
	case "once":
		requireConfigArg(command)
		runService(os.Args[2], true)
	case "validate":
		requireConfigArg(command)
		validateConfig(os.Args[2])
	case "version", "--version":
		fmt.Printf("mediascrapexter %s (built %s, commit %s)\n", version, buildTime, gitCommit)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func requireConfigArg(command string) {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: mediascrapexter %s <config.yaml>\n", command)
		os.Exit(1)
	}
}

// runService starts the scraping service. With once set it performs a
// single cycle and exits, which suits cron-style deployments.
func runService(configFile string, once bool) {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := utils.InitLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	utils.Infof("mediascrapexter %s starting with config %q", version, cfg.Name)

	var opts []worker.Option
	if cfg.Metrics.Enabled {
		metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
		opts = append(opts, worker.WithMetrics(metrics))

		srv := monitoring.NewServer(cfg.Metrics.Address, prometheus.DefaultGatherer)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := worker.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		candidates, err := w.RunCycle(ctx)
		if err != nil {
			utils.Errorf("cycle failed: %v", err)
			os.Exit(1)
		}
		utils.Infof("cycle complete, %d candidates processed", candidates)
		return
	}

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		utils.Errorf("service stopped: %v", err)
		os.Exit(1)
	}
	utils.Infof("service stopped")
}

func validateConfig(configFile string) {
	if _, err := config.LoadFromFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("configuration file %q is valid\n", configFile)
}

func printUsage() {
	fmt.Println(`mediascrapexter - broadcast segment scraper and downloader

Usage:
  mediascrapexter run <config.yaml>       Run the scraping service
  mediascrapexter once <config.yaml>      Run a single scraping cycle and exit
  mediascrapexter validate <config.yaml>  Validate a configuration file
  mediascrapexter version                 Print version information
  mediascrapexter help                    Show this help`)
}
