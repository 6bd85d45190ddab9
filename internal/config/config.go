// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} references in YAML.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadFromFile reads, expands, and validates a configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML. Environment variable
// references are expanded before parsing, defaults are applied, and the
// result is validated.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		expr := match[2 : len(match)-1]
		name, def := expr, ""
		for i := 0; i+1 < len(expr); i++ {
			if expr[i] == ':' && expr[i+1] == '-' {
				name, def = expr[:i], expr[i+2:]
				break
			}
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return def
	})
}

// applyDefaults fills in unset fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "mediascrapexter"
	}
	if c.Concurrency.MaxSessions <= 0 {
		c.Concurrency.MaxSessions = 3
	}
	if c.Concurrency.GroupSize <= 0 {
		c.Concurrency.GroupSize = 20
	}
	if c.Browser.SettleDelayMin <= 0 {
		c.Browser.SettleDelayMin = Duration(6 * time.Second)
	}
	if c.Browser.SettleDelayMax <= c.Browser.SettleDelayMin {
		c.Browser.SettleDelayMax = c.Browser.SettleDelayMin + Duration(4*time.Second)
	}
	if c.Media.AudioToken == "" {
		c.Media.AudioToken = ".mp3"
	}
	if c.Download.FFmpegPath == "" {
		c.Download.FFmpegPath = "ffmpeg"
	}
	if c.Download.FFprobePath == "" {
		c.Download.FFprobePath = "ffprobe"
	}
	if c.Download.AudioBitrate == "" {
		c.Download.AudioBitrate = "128k"
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
