package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.CheckupWindowDays != 60 {
		t.Errorf("CheckupWindowDays = %d, want 60", cfg.CheckupWindowDays)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"gemini_model": "gemini-2.0-pro", "checkup_window_days": 30, "disabled_tools": ["records_export"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.0-pro" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.CheckupWindowDays != 30 {
		t.Errorf("CheckupWindowDays = %d", cfg.CheckupWindowDays)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "records_export" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestAPIKeyEnvWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg := &Config{GeminiAPIKey: "from-file"}
	if got := cfg.APIKey(); got != "from-env" {
		t.Errorf("APIKey() = %q, want from-env", got)
	}

	t.Setenv("GEMINI_API_KEY", "")
	if got := cfg.APIKey(); got != "from-file" {
		t.Errorf("APIKey() = %q, want from-file", got)
	}
}

func TestMergeDeduplicatesTools(t *testing.T) {
	merged := Merge(
		&Config{DisabledTools: []string{"a", "b"}},
		&Config{DisabledTools: []string{" b ", "c"}},
	)
	if len(merged.DisabledTools) != 3 {
		t.Errorf("DisabledTools = %v, want 3 entries", merged.DisabledTools)
	}
}
