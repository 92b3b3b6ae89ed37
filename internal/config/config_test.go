package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/himdisplay/internal/testutil/testlog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplatesLoadCleanly(t *testing.T) {
	testlog.Start(t)
	for _, kind := range Kinds() {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		if err := Validate(path, kind); err != nil {
			t.Fatalf("validate %s template: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("expected refusal to overwrite %s", path)
		}
		if err := WriteTemplate(path, kind, true); err != nil {
			t.Fatalf("forced overwrite: %v", err)
		}
	}
}

func TestLoadDecodeConfigDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadDecodeConfig(writeFile(t, "[input]\npath = \"x.csv\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "himdctl" || cfg.Input.Format != "csv" || cfg.Transport.Kind != "http" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadDecodeConfigRejectsUnknownFormat(t *testing.T) {
	testlog.Start(t)
	_, err := LoadDecodeConfig(writeFile(t, "[input]\nformat = \"vcd\"\n"))
	if err == nil || !strings.Contains(err.Error(), "input.format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestLoadScreenConfig(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadScreenConfig(writeFile(t, "http_addr = \"127.0.0.1:9999\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "screenctl" || cfg.History != 512 || cfg.Discovery.Instance != "screenctl" || cfg.Discovery.Domain != "local." {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	if _, err := LoadScreenConfig(writeFile(t, "http_addr = \"nope\"\n")); err == nil {
		t.Fatalf("expected http_addr error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := LoadScreenConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestTemplateUnknownKind(t *testing.T) {
	if _, err := Template("mirage"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if _, err := DefaultPath("mirage"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
