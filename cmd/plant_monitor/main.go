package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dj-oyu/plant-monitor/internal/analyzer"
	"github.com/dj-oyu/plant-monitor/internal/camera"
	"github.com/dj-oyu/plant-monitor/internal/config"
	"github.com/dj-oyu/plant-monitor/internal/logger"
	"github.com/dj-oyu/plant-monitor/internal/metrics"
	"github.com/dj-oyu/plant-monitor/internal/mjpeg"
	"github.com/dj-oyu/plant-monitor/internal/network"
	"github.com/dj-oyu/plant-monitor/internal/server"
)

const opsRetryDelay = 5 * time.Second

var (
	// Command-line flags; unset flags keep the config file value.
	configPath  = flag.String("config", "", "YAML config file")
	httpAddr    = flag.String("http", "", "HTTP server address (default :8080)")
	metricsAddr = flag.String("metrics", "", "Metrics server address, empty to disable (default :9090)")
	sourceKind  = flag.String("source", "", "Frame source: synthetic or dir")
	sourceDir   = flag.String("frames", "", "Directory of stills for -source dir")
	iface       = flag.String("iface", "", "Wireless interface to wait for (default: host network)")
	envFile     = flag.String("env", "", "Dotenv file with WIFI_SSID and WIFI_KEY (default .env)")
	detector    = flag.String("detector", "lab", "Blob detector: lab, or cv when built with -tags gocv")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error, silent)")
	logColor    = flag.Bool("log-color", true, "Enable colored log output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg)

	cfg, err = cfg.WithCredentials()
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, cfg.LogColor)

	logger.Info("Main", "Plant monitor starting...")
	logger.Info("Main", "Log level: %s", level)

	src, err := newSource(cfg.Source)
	if err != nil {
		log.Fatalf("Failed to open frame source: %v", err)
	}
	det, err := newDetector(*detector)
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}

	var link network.Link = network.HostLink{}
	if cfg.WiFi.Interface != "" {
		link = network.InterfaceLink{Name: cfg.WiFi.Interface}
	}

	m := metrics.New()
	srv := server.New(cfg, server.Deps{
		Source:   camera.NewExclusive(src),
		Analyzer: analyzer.New(det, cfg.Classes),
		Encoder:  mjpeg.NewJPEGEncoder(),
		Link:     link,
		Metrics:  m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, srv, m, cfg.MetricsAddr); err != nil {
		logger.Error("Main", "Stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info("Main", "Plant monitor stopped")
}

// serve runs the plant server and the ops listener until ctx is cancelled.
// Ops listener failures are retried and never stop the plant server.
func serve(ctx context.Context, srv *server.Server, m *metrics.Metrics, metricsAddr string) error {
	var g errgroup.Group
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		m.ServeWithRetry(ctx, metricsAddr, opsRetryDelay)
		return nil
	})
	return g.Wait()
}

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http":
			cfg.Addr = *httpAddr
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		case "source":
			cfg.Source.Kind = *sourceKind
		case "frames":
			cfg.Source.Dir = *sourceDir
		case "iface":
			cfg.WiFi.Interface = *iface
		case "env":
			cfg.WiFi.EnvFile = *envFile
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-color":
			cfg.LogColor = *logColor
		}
	})
}

func newSource(sc config.SourceConfig) (camera.Source, error) {
	if sc.Kind == config.SourceDir {
		return camera.NewDirSource(sc.Dir, sc.Width, sc.Height, sc.Interval)
	}
	return camera.NewSyntheticSource(sc.Width, sc.Height, sc.Interval), nil
}
