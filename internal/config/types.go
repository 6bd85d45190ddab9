// internal/config/types.go

// Package config provides configuration types and loading for MediaScrapexter.
// It defines the settings needed to discover broadcast segment pages, drive
// the headless browser fleet, and plan downloads on disk.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Duration is a time.Duration that unmarshals from YAML strings like "6s"
// as well as integer nanosecond counts.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config represents the main configuration for a scraping deployment.
type Config struct {
	// Name identifies this configuration
	Name string `yaml:"name" json:"name"`

	// SourceAddresses lists discovery entry points: sitemap XML documents
	// or HTML listing pages
	SourceAddresses []string `yaml:"source_addresses" json:"source_addresses"`

	// OutputFolderPath is the root directory downloads are planned under.
	// When empty, path planning yields no destination and downloads are skipped.
	OutputFolderPath string `yaml:"output_folder_path,omitempty" json:"output_folder_path,omitempty"`

	// LedgerFilePath is the newline-delimited file recording completed
	// downloads. An empty value disables downloading entirely.
	LedgerFilePath string `yaml:"ledger_file_path,omitempty" json:"ledger_file_path,omitempty"`

	// DateFrom and DateTo bound discovery to a month window (YYYY-MM-DD).
	// Both must be set for the window to apply.
	DateFrom string `yaml:"date_from,omitempty" json:"date_from,omitempty"`
	DateTo   string `yaml:"date_to,omitempty" json:"date_to,omitempty"`

	// ParsingHours lists the hours of the day (0-23) during which scraping
	// cycles may start. The value 100 or an empty list permits any hour.
	ParsingHours []int `yaml:"parsing_hours,omitempty" json:"parsing_hours,omitempty"`

	// Concurrency controls browser-session parallelism and batching
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`

	// Browser configures the headless Chrome sessions
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Media selects which intercepted media URLs make a segment actionable
	Media MediaConfig `yaml:"media" json:"media"`

	// Download configures the transcoding toolchain
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configures the structured logger
	Logging utils.LogConfig `yaml:"logging" json:"logging"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ConcurrencyConfig bounds parallel browser work.
type ConcurrencyConfig struct {
	// MaxSessions is the number of browser sessions allowed to run at once
	MaxSessions int `yaml:"max_sessions" json:"max_sessions"`

	// GroupSize is the number of candidate URLs served by one session
	GroupSize int `yaml:"group_size" json:"group_size"`

	// NavigationsPerSecond throttles page navigations across all sessions
	NavigationsPerSecond float64 `yaml:"navigations_per_second,omitempty" json:"navigations_per_second,omitempty"`
}

// BrowserConfig controls how headless Chrome is launched and driven.
type BrowserConfig struct {
	// ExecPath overrides the Chrome binary location; empty uses the default lookup
	ExecPath string `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`

	// Headless runs Chrome without a visible window
	Headless bool `yaml:"headless" json:"headless"`

	// NavigationTimeout bounds a single page load; zero means no bound,
	// which suits slow origin servers
	NavigationTimeout Duration `yaml:"navigation_timeout,omitempty" json:"navigation_timeout,omitempty"`

	// SettleDelayMin and SettleDelayMax bound the randomized pause after
	// navigation while the page player issues its media requests
	SettleDelayMin Duration `yaml:"settle_delay_min,omitempty" json:"settle_delay_min,omitempty"`
	SettleDelayMax Duration `yaml:"settle_delay_max,omitempty" json:"settle_delay_max,omitempty"`
}

// MediaConfig selects which intercepted URLs count as usable media.
type MediaConfig struct {
	// AudioToken marks a URL as directly downloadable audio
	AudioToken string `yaml:"audio_token,omitempty" json:"audio_token,omitempty"`

	// VideoToken restricts which video URLs are accepted for audio
	// extraction; empty accepts any observed video URL
	VideoToken string `yaml:"video_token,omitempty" json:"video_token,omitempty"`
}

// DownloadConfig locates the external transcoding binaries.
type DownloadConfig struct {
	// FFmpegPath is the ffmpeg binary used to extract audio from video streams
	FFmpegPath string `yaml:"ffmpeg_path,omitempty" json:"ffmpeg_path,omitempty"`

	// FFprobePath is the companion probe binary
	FFprobePath string `yaml:"ffprobe_path,omitempty" json:"ffprobe_path,omitempty"`

	// AudioBitrate is passed to ffmpeg when extracting audio (e.g. "128k")
	AudioBitrate string `yaml:"audio_bitrate,omitempty" json:"audio_bitrate,omitempty"`
}

// MetricsConfig controls the HTTP endpoint serving Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns the metrics server on
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Address is the listen address, e.g. ":9090"
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
}

// Window returns the configured discovery window. The zero times are
// returned when either bound is missing or malformed, which disables
// window filtering.
func (c *Config) Window() (from, to time.Time) {
	if c.DateFrom == "" || c.DateTo == "" {
		return time.Time{}, time.Time{}
	}
	f, err := time.Parse("2006-01-02", c.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return f, t
}

// HourPermitted reports whether a scraping cycle may start during hour.
// The sentinel value 100 in ParsingHours, like an empty list, permits
// every hour of the day.
func (c *Config) HourPermitted(hour int) bool {
	if len(c.ParsingHours) == 0 {
		return true
	}
	for _, h := range c.ParsingHours {
		if h == 100 || h == hour {
			return true
		}
	}
	return false
}
