package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindDecode:
		return decodeTemplate, nil
	case KindScreen:
		return screenTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

// DefaultPath is where a kind's config lives inside the repo.
func DefaultPath(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindDecode:
		return "cmd/himdctl/config.toml", nil
	case KindScreen:
		return "cmd/screenctl/config.toml", nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Validate loads path as kind and reports the first problem.
func Validate(path, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindDecode:
		_, err := LoadDecodeConfig(path)
		return err
	case KindScreen:
		_, err := LoadScreenConfig(path)
		return err
	default:
		return fmt.Errorf("unknown config kind: %s", kind)
	}
}

const decodeTemplate = `name = "himdctl"

[input]
path = "capture.csv"
format = "csv"

[transport]
kind = "http"
target = "http://localhost:36002/"
discover = false
discover_timeout_ms = 3000
connect_timeout_ms = 2000
write_timeout_ms = 2000
max_connect_attempts = 3
queue_size = 256

[metrics]
addr = ""
`

const screenTemplate = `name = "screenctl"
http_addr = "localhost:36002"
stream_addr = "localhost:36003"
cors_origins = ["http://localhost:3000"]
history = 512

[discovery]
enabled = true
instance = "screenctl"
domain = "local."
`
