// internal/config/config_test.go

package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

const sampleYAML = `
name: rai-regional
source_addresses:
  - https://www.raiplaysound.it/sitemap.xml
  - https://www.raiplaysound.it/programmi/gr-basilicata
output_folder_path: /srv/media
ledger_file_path: /srv/media/downloaded.txt
date_from: "2023-01-01"
date_to: "2023-06-30"
parsing_hours: [6, 12, 19]
concurrency:
  max_sessions: 2
  group_size: 10
browser:
  headless: true
  settle_delay_min: 6s
  settle_delay_max: 10s
`

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if cfg.Name != "rai-regional" {
		t.Errorf("Name = %q, want %q", cfg.Name, "rai-regional")
	}
	if len(cfg.SourceAddresses) != 2 {
		t.Fatalf("SourceAddresses = %d entries, want 2", len(cfg.SourceAddresses))
	}
	if cfg.Concurrency.GroupSize != 10 {
		t.Errorf("GroupSize = %d, want 10", cfg.Concurrency.GroupSize)
	}
	if cfg.Browser.SettleDelayMax.Std() != 10*time.Second {
		t.Errorf("SettleDelayMax = %v, want 10s", cfg.Browser.SettleDelayMax.Std())
	}

	from, to := cfg.Window()
	if from.IsZero() || to.IsZero() {
		t.Fatal("Window returned zero bounds for a configured window")
	}
	if from.Month() != time.January || to.Month() != time.June {
		t.Errorf("Window = %v..%v, want Jan..Jun", from, to)
	}
}

func TestLoadFromBytesDefaults(t *testing.T) {
	minimal := `
source_addresses:
  - https://www.raiplaysound.it/sitemap.xml
`
	cfg, err := LoadFromBytes([]byte(minimal))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if cfg.Concurrency.MaxSessions != 3 {
		t.Errorf("default MaxSessions = %d, want 3", cfg.Concurrency.MaxSessions)
	}
	if cfg.Concurrency.GroupSize != 20 {
		t.Errorf("default GroupSize = %d, want 20", cfg.Concurrency.GroupSize)
	}
	if cfg.Browser.SettleDelayMin.Std() != 6*time.Second {
		t.Errorf("default SettleDelayMin = %v, want 6s", cfg.Browser.SettleDelayMin.Std())
	}
	if cfg.Browser.SettleDelayMax.Std() != 10*time.Second {
		t.Errorf("default SettleDelayMax = %v, want 10s", cfg.Browser.SettleDelayMax.Std())
	}
	if cfg.Media.AudioToken != ".mp3" {
		t.Errorf("default AudioToken = %q, want .mp3", cfg.Media.AudioToken)
	}
	if cfg.Download.AudioBitrate != "128k" {
		t.Errorf("default AudioBitrate = %q, want 128k", cfg.Download.AudioBitrate)
	}
}

func TestLoadFromBytesEnvExpansion(t *testing.T) {
	os.Setenv("MSX_TEST_ROOT", "/data/rai")
	defer os.Unsetenv("MSX_TEST_ROOT")

	yaml := `
source_addresses:
  - https://www.raiplaysound.it/sitemap.xml
output_folder_path: ${MSX_TEST_ROOT}/out
ledger_file_path: ${MSX_TEST_LEDGER:-/data/rai/ledger.txt}
`
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.OutputFolderPath != "/data/rai/out" {
		t.Errorf("OutputFolderPath = %q, want /data/rai/out", cfg.OutputFolderPath)
	}
	if cfg.LedgerFilePath != "/data/rai/ledger.txt" {
		t.Errorf("LedgerFilePath = %q, want fallback default", cfg.LedgerFilePath)
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var b BrowserConfig
	input := "settle_delay_min: 1500ms\nnavigation_timeout: 90000000000\n"
	if err := yaml.Unmarshal([]byte(input), &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.SettleDelayMin.Std() != 1500*time.Millisecond {
		t.Errorf("SettleDelayMin = %v, want 1.5s", b.SettleDelayMin.Std())
	}
	if b.NavigationTimeout.Std() != 90*time.Second {
		t.Errorf("NavigationTimeout = %v, want 90s from nanoseconds", b.NavigationTimeout.Std())
	}

	var bad BrowserConfig
	if err := yaml.Unmarshal([]byte("settle_delay_min: soon\n"), &bad); err == nil {
		t.Error("expected an error for a malformed duration")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "no sources",
			mutate:  func(c *Config) { c.SourceAddresses = nil },
			wantSub: "source address",
		},
		{
			name:    "relative source",
			mutate:  func(c *Config) { c.SourceAddresses = []string{"sitemap.xml"} },
			wantSub: "absolute HTTP URL",
		},
		{
			name:    "half window",
			mutate:  func(c *Config) { c.DateFrom = "2023-01-01"; c.DateTo = "" },
			wantSub: "set together",
		},
		{
			name:    "inverted window",
			mutate:  func(c *Config) { c.DateFrom = "2023-06-01"; c.DateTo = "2023-01-01" },
			wantSub: "precedes",
		},
		{
			name:    "bad hour",
			mutate:  func(c *Config) { c.ParsingHours = []int{25} },
			wantSub: "hour of the day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				SourceAddresses: []string{"https://www.raiplaysound.it/sitemap.xml"},
			}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestHourPermitted(t *testing.T) {
	tests := []struct {
		name  string
		hours []int
		hour  int
		want  bool
	}{
		{"empty permits all", nil, 3, true},
		{"listed hour", []int{6, 12}, 12, true},
		{"unlisted hour", []int{6, 12}, 13, false},
		{"sentinel permits all", []int{100}, 23, true},
		{"sentinel among hours", []int{6, 100}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ParsingHours: tt.hours}
			if got := cfg.HourPermitted(tt.hour); got != tt.want {
				t.Errorf("HourPermitted(%d) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestWindowUnset(t *testing.T) {
	cfg := &Config{}
	from, to := cfg.Window()
	if !from.IsZero() || !to.IsZero() {
		t.Errorf("Window on unset bounds = %v..%v, want zero times", from, to)
	}
}
