package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	KindDecode = "decode"
	KindScreen = "screen"
)

// DecodeConfig drives himdctl.
type DecodeConfig struct {
	Name      string          `toml:"name"`
	Input     InputConfig     `toml:"input"`
	Transport TransportConfig `toml:"transport"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type InputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

type TransportConfig struct {
	Kind               string `toml:"kind"`
	Target             string `toml:"target"`
	Discover           bool   `toml:"discover"`
	DiscoverTimeoutMS  int    `toml:"discover_timeout_ms"`
	ConnectTimeoutMS   int    `toml:"connect_timeout_ms"`
	WriteTimeoutMS     int    `toml:"write_timeout_ms"`
	MaxConnectAttempts int    `toml:"max_connect_attempts"`
	QueueSize          int    `toml:"queue_size"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// ScreenConfig drives screenctl.
type ScreenConfig struct {
	Name        string          `toml:"name"`
	HTTPAddr    string          `toml:"http_addr"`
	StreamAddr  string          `toml:"stream_addr"`
	CorsOrigins []string        `toml:"cors_origins"`
	History     int             `toml:"history"`
	Discovery   DiscoveryConfig `toml:"discovery"`
}

type DiscoveryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Instance string `toml:"instance"`
	Domain   string `toml:"domain"`
}

var (
	inputFormats   = []string{"csv", "hex"}
	transportKinds = []string{"http", "stream", "discard"}
)

func Kinds() []string {
	return []string{KindDecode, KindScreen}
}

func LoadDecodeConfig(path string) (DecodeConfig, error) {
	var cfg DecodeConfig
	if err := loadToml(path, &cfg); err != nil {
		return DecodeConfig{}, err
	}
	cfg = cfg.withDefaults()
	if err := ValidateDecodeConfig(cfg); err != nil {
		return DecodeConfig{}, err
	}
	return cfg, nil
}

// DefaultDecodeConfig is the decode config with every default filled in.
func DefaultDecodeConfig() DecodeConfig {
	return DecodeConfig{}.withDefaults()
}

func (c DecodeConfig) withDefaults() DecodeConfig {
	if c.Name == "" {
		c.Name = "himdctl"
	}
	if c.Input.Format == "" {
		c.Input.Format = "csv"
	}
	if c.Transport.Kind == "" {
		c.Transport.Kind = "http"
	}
	return c
}

func LoadScreenConfig(path string) (ScreenConfig, error) {
	var cfg ScreenConfig
	if err := loadToml(path, &cfg); err != nil {
		return ScreenConfig{}, err
	}
	cfg = cfg.withDefaults()
	if err := ValidateScreenConfig(cfg); err != nil {
		return ScreenConfig{}, err
	}
	return cfg, nil
}

func (c ScreenConfig) withDefaults() ScreenConfig {
	if c.Name == "" {
		c.Name = "screenctl"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = "localhost:36002"
	}
	if c.History <= 0 {
		c.History = 512
	}
	if c.Discovery.Instance == "" {
		c.Discovery.Instance = c.Name
	}
	if c.Discovery.Domain == "" {
		c.Discovery.Domain = "local."
	}
	return c
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func ValidateDecodeConfig(cfg DecodeConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("decode config missing name")
	}
	if !oneOf(cfg.Input.Format, inputFormats) {
		return fmt.Errorf("decode config input.format %q not one of %v", cfg.Input.Format, inputFormats)
	}
	if !oneOf(cfg.Transport.Kind, transportKinds) {
		return fmt.Errorf("decode config transport.kind %q not one of %v", cfg.Transport.Kind, transportKinds)
	}
	t := cfg.Transport
	if t.ConnectTimeoutMS < 0 || t.WriteTimeoutMS < 0 || t.DiscoverTimeoutMS < 0 || t.MaxConnectAttempts < 0 || t.QueueSize < 0 {
		return fmt.Errorf("decode config transport values must not be negative")
	}
	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("decode config metrics.addr invalid: %w", err)
		}
	}
	return nil
}

func ValidateScreenConfig(cfg ScreenConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("screen config missing name")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("screen config http_addr invalid: %w", err)
	}
	if cfg.StreamAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.StreamAddr); err != nil {
			return fmt.Errorf("screen config stream_addr invalid: %w", err)
		}
	}
	if cfg.History <= 0 {
		return fmt.Errorf("screen config history must be positive")
	}
	return nil
}
