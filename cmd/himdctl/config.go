package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/himdisplay/internal/config"
)

type fileConfig struct {
	Name      string        `toml:"name"`
	Input     fileInput     `toml:"input"`
	Transport fileTransport `toml:"transport"`
	Metrics   fileMetrics   `toml:"metrics"`
}

type fileInput struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

type fileTransport struct {
	Kind               string `toml:"kind"`
	Target             string `toml:"target"`
	Discover           bool   `toml:"discover"`
	DiscoverTimeoutMS  int    `toml:"discover_timeout_ms"`
	ConnectTimeoutMS   int    `toml:"connect_timeout_ms"`
	WriteTimeoutMS     int    `toml:"write_timeout_ms"`
	MaxConnectAttempts int    `toml:"max_connect_attempts"`
	QueueSize          int    `toml:"queue_size"`
}

type fileMetrics struct {
	Addr string `toml:"addr"`
}

// loadDecodeConfig overlays the keys present in path onto the defaults.
// An empty path returns the defaults.
func loadDecodeConfig(path string) (config.DecodeConfig, error) {
	cfg := config.DefaultDecodeConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.DecodeConfig{}, fmt.Errorf("load himdctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.DecodeConfig{}, fmt.Errorf("load himdctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		if v := strings.TrimSpace(raw.Name); v != "" {
			cfg.Name = v
		}
	}
	if meta.IsDefined("input", "path") {
		cfg.Input.Path = strings.TrimSpace(raw.Input.Path)
	}
	if meta.IsDefined("input", "format") {
		cfg.Input.Format = strings.ToLower(strings.TrimSpace(raw.Input.Format))
	}
	if meta.IsDefined("transport", "kind") {
		cfg.Transport.Kind = strings.ToLower(strings.TrimSpace(raw.Transport.Kind))
	}
	if meta.IsDefined("transport", "target") {
		cfg.Transport.Target = strings.TrimSpace(raw.Transport.Target)
	}
	if meta.IsDefined("transport", "discover") {
		cfg.Transport.Discover = raw.Transport.Discover
	}
	if meta.IsDefined("transport", "discover_timeout_ms") {
		cfg.Transport.DiscoverTimeoutMS = raw.Transport.DiscoverTimeoutMS
	}
	if meta.IsDefined("transport", "connect_timeout_ms") {
		cfg.Transport.ConnectTimeoutMS = raw.Transport.ConnectTimeoutMS
	}
	if meta.IsDefined("transport", "write_timeout_ms") {
		cfg.Transport.WriteTimeoutMS = raw.Transport.WriteTimeoutMS
	}
	if meta.IsDefined("transport", "max_connect_attempts") {
		cfg.Transport.MaxConnectAttempts = raw.Transport.MaxConnectAttempts
	}
	if meta.IsDefined("transport", "queue_size") {
		cfg.Transport.QueueSize = raw.Transport.QueueSize
	}
	if meta.IsDefined("metrics", "addr") {
		cfg.Metrics.Addr = strings.TrimSpace(raw.Metrics.Addr)
	}

	if err := config.ValidateDecodeConfig(cfg); err != nil {
		return config.DecodeConfig{}, err
	}
	return cfg, nil
}
