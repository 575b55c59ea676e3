package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genui.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.Renderer != "html" || cfg.MaxDepth != 32 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LLM.Provider != "static" || cfg.Store.Driver != "memory" {
		t.Fatalf("unexpected nested defaults: %+v %+v", cfg.LLM, cfg.Store)
	}
	if cfg.ShutdownTimeout != 10*time.Second || cfg.Store.TTL != 24*time.Hour {
		t.Fatalf("durations not decoded: %v %v", cfg.ShutdownTimeout, cfg.Store.TTL)
	}
	if cfg.File != "" {
		t.Fatalf("unexpected config file %q", cfg.File)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
addr: ":9000"
renderer: text
max_depth: 8
llm:
  provider: static
  static_response: '{"type":"badge"}'
store:
  driver: sqlite
  dsn: /tmp/a.db
`)
	t.Setenv("GENUI_MAX_DEPTH", "12")
	t.Setenv("GENUI_STORE_DSN", "/tmp/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	flags.String("renderer", "", "")
	flags.String("llm-model", "", "")
	if err := flags.Parse([]string{"--renderer", "html", "--llm-model", "flag-model"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("config file not recorded: %q", cfg.File)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("unset flag should not override file: %q", cfg.Addr)
	}
	if cfg.Renderer != "html" {
		t.Fatalf("flag should override file: %q", cfg.Renderer)
	}
	if cfg.MaxDepth != 12 || cfg.Store.DSN != "/tmp/env.db" {
		t.Fatalf("env should override file: %d %q", cfg.MaxDepth, cfg.Store.DSN)
	}
	if cfg.Store.Driver != "sqlite" || cfg.LLM.StaticResponse != `{"type":"badge"}` {
		t.Fatalf("file values missing: %+v %+v", cfg.Store, cfg.LLM)
	}
	if cfg.LLM.Model != "flag-model" {
		t.Fatalf("nested flag not mapped: %q", cfg.LLM.Model)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeFile(t, "store:\n  driver: postgres\n")
	if _, err := Load(path, nil); err == nil {
		t.Fatalf("expected invalid driver error")
	}

	t.Setenv("GEMINI_API_KEY", "")
	path = writeFile(t, "llm:\n  provider: gemini\n")
	if _, err := Load(path, nil); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestKey(t *testing.T) {
	cases := map[string]string{
		"LLM_API_KEY":          "llm.api_key",
		"llm-api-key":          "llm.api_key",
		"STORE_DSN":            "store.dsn",
		"enforce-child-policy": "enforce_child_policy",
		"LOG_LEVEL":            "log_level",
	}
	for in, want := range cases {
		if got := Key(in); got != want {
			t.Fatalf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}
