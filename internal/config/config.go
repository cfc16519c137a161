// Package config holds the immutable process configuration. Values are fixed at
// startup and passed to components by value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dj-oyu/plant-monitor/internal/analyzer"
	"github.com/dj-oyu/plant-monitor/internal/network"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Frame source kinds.
const (
	SourceSynthetic = "synthetic"
	SourceDir       = "dir"
)

// Credential variable names looked up in the dotenv file, then the environment.
const (
	EnvSSID = "WIFI_SSID"
	EnvKey  = "WIFI_KEY"
)

// Config defines the runtime configuration for the plant monitor.
type Config struct {
	Addr             string
	MetricsAddr      string
	LogLevel         string
	LogColor         bool
	JPEGQuality      int
	StreamCaption    bool // FPS text in the top-left of each stream frame
	RebindDelay      time.Duration
	DataPollInterval time.Duration
	Classes          analyzer.Classes
	Source           SourceConfig
	WiFi             WiFiConfig
}

// SourceConfig selects and sizes the frame source.
type SourceConfig struct {
	Kind     string
	Dir      string
	Width    int
	Height   int
	Interval time.Duration
}

// WiFiConfig drives network association.
type WiFiConfig struct {
	Interface       string // empty: the host network is assumed up
	SSID            string
	Key             string
	EnvFile         string
	MaxAttempts     int
	AttemptInterval time.Duration
}

// Options converts the Wi-Fi settings for network.Associate.
func (w WiFiConfig) Options() network.Options {
	return network.Options{
		SSID:        w.SSID,
		Key:         w.Key,
		MaxAttempts: w.MaxAttempts,
		Interval:    w.AttemptInterval,
	}
}

// DefaultConfig returns the compiled-in configuration.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		MetricsAddr:      ":9090",
		LogLevel:         "info",
		LogColor:         true,
		JPEGQuality:      70,
		StreamCaption:    true,
		RebindDelay:      1 * time.Second,
		DataPollInterval: 2000 * time.Millisecond,
		Classes:          analyzer.DefaultClasses(),
		Source: SourceConfig{
			Kind:     SourceSynthetic,
			Width:    320,
			Height:   240,
			Interval: 33 * time.Millisecond,
		},
		WiFi: WiFiConfig{
			EnvFile:         ".env",
			MaxAttempts:     10,
			AttemptInterval: 1 * time.Second,
		},
	}
}

// FileConfig is the YAML shape. Only deployment settings are exposed; colour
// thresholds, blob minimums and JPEG quality stay compiled in.
type FileConfig struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogColor    *bool  `yaml:"log_color"`
	Caption     *bool  `yaml:"stream_caption"`
	Source      struct {
		Kind     string        `yaml:"kind"`
		Dir      string        `yaml:"dir"`
		Width    int           `yaml:"width"`
		Height   int           `yaml:"height"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"source"`
	WiFi struct {
		Interface string `yaml:"interface"`
		EnvFile   string `yaml:"env_file"`
	} `yaml:"wifi"`
}

// Load returns DefaultConfig overlaid with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	fc.apply(&cfg)
	return cfg, nil
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.LogColor != nil {
		cfg.LogColor = *fc.LogColor
	}
	if fc.Caption != nil {
		cfg.StreamCaption = *fc.Caption
	}
	setString(&cfg.Source.Kind, fc.Source.Kind)
	setString(&cfg.Source.Dir, fc.Source.Dir)
	if fc.Source.Width > 0 {
		cfg.Source.Width = fc.Source.Width
	}
	if fc.Source.Height > 0 {
		cfg.Source.Height = fc.Source.Height
	}
	if fc.Source.Interval > 0 {
		cfg.Source.Interval = fc.Source.Interval
	}
	setString(&cfg.WiFi.Interface, fc.WiFi.Interface)
	setString(&cfg.WiFi.EnvFile, fc.WiFi.EnvFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// WithCredentials returns a copy of cfg with the Wi-Fi SSID and key read from the
// dotenv file, falling back to the process environment for missing values.
// A missing dotenv file is not an error.
func (c Config) WithCredentials() (Config, error) {
	values := map[string]string{}
	if c.WiFi.EnvFile != "" {
		read, err := godotenv.Read(c.WiFi.EnvFile)
		switch {
		case err == nil:
			values = read
		case errors.Is(err, os.ErrNotExist):
		default:
			return c, fmt.Errorf("failed to read %s: %w", c.WiFi.EnvFile, err)
		}
	}

	lookup := func(key string) string {
		if v := values[key]; v != "" {
			return v
		}
		return os.Getenv(key)
	}
	c.WiFi.SSID = lookup(EnvSSID)
	c.WiFi.Key = lookup(EnvKey)
	return c, nil
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("%w: jpeg quality %d outside 1..100", ErrInvalid, c.JPEGQuality)
	case c.RebindDelay < 0:
		return fmt.Errorf("%w: negative rebind delay", ErrInvalid)
	case c.Source.Kind != SourceSynthetic && c.Source.Kind != SourceDir:
		return fmt.Errorf("%w: unknown frame source %q", ErrInvalid, c.Source.Kind)
	case c.Source.Kind == SourceDir && c.Source.Dir == "":
		return fmt.Errorf("%w: frame source dir requires a directory", ErrInvalid)
	case c.Source.Width <= 0 || c.Source.Height <= 0:
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalid, c.Source.Width, c.Source.Height)
	case c.WiFi.MaxAttempts <= 0:
		return fmt.Errorf("%w: wifi attempts must be positive", ErrInvalid)
	}
	if err := c.Classes.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
