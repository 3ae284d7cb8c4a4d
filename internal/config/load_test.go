package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapsort.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNAPSORT_MODE", "OPENAI_API_KEY", "SNAPSORT_VISION_API_KEY",
		"SNAPSORT_REMOTE_ENDPOINT", "SNAPSORT_LOCAL_ENDPOINT",
		"SNAPSORT_BASE_FOLDER", "SNAPSORT_OCR_MIN_WORDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "remote" {
		t.Fatalf("Mode=%q want=remote", cfg.Mode)
	}
	if cfg.Processing.OCRMinWords != 10 {
		t.Fatalf("OCRMinWords=%d want=10", cfg.Processing.OCRMinWords)
	}
	if len(cfg.Organization.Categories) != 7 {
		t.Fatalf("Categories=%v", cfg.Organization.Categories)
	}
	if !cfg.Organization.KeepOriginals {
		t.Fatal("KeepOriginals should default to true")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
mode: local
processing:
  ocr_min_words: 5
organization:
  base_folder: /data/shots
  categories: [code, other]
local:
  endpoint: http://127.0.0.1:8080/v1
  model: llama3
`)
	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "local" || cfg.Processing.OCRMinWords != 5 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Organization.BaseFolder != "/data/shots" {
		t.Fatalf("BaseFolder=%q", cfg.Organization.BaseFolder)
	}
	if cfg.Local.Model != "llama3" {
		t.Fatalf("Local.Model=%q", cfg.Local.Model)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "mode: local\n")
	t.Setenv("SNAPSORT_MODE", "REMOTE")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SNAPSORT_BASE_FOLDER", "/env/shots")
	t.Setenv("SNAPSORT_OCR_MIN_WORDS", "3")

	cfg, err := Load(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "remote" {
		t.Fatalf("Mode=%q want env to win and be lowercased", cfg.Mode)
	}
	if cfg.Remote.APIKey != "sk-test" {
		t.Fatalf("Remote.APIKey=%q", cfg.Remote.APIKey)
	}
	// The shared key also feeds the vision client unless set separately.
	if cfg.Vision.APIKey != "sk-test" {
		t.Fatalf("Vision.APIKey=%q", cfg.Vision.APIKey)
	}
	if cfg.Organization.BaseFolder != "/env/shots" || cfg.Processing.OCRMinWords != 3 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSORT_MODE", "remote")
	t.Setenv("SNAPSORT_BASE_FOLDER", "/env/shots")

	mode := "local"
	baseFolder := "/flag/shots"
	cfg, err := Load(Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Overrides:  &Overrides{Mode: &mode, BaseFolder: &baseFolder},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "local" || cfg.Organization.BaseFolder != "/flag/shots" {
		t.Fatalf("cfg mode=%q base=%q", cfg.Mode, cfg.Organization.BaseFolder)
	}
}

func TestLoadSeparateVisionKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-remote")
	t.Setenv("SNAPSORT_VISION_API_KEY", "sk-vision")

	cfg, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Remote.APIKey != "sk-remote" || cfg.Vision.APIKey != "sk-vision" {
		t.Fatalf("keys remote=%q vision=%q", cfg.Remote.APIKey, cfg.Vision.APIKey)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "mode: hybrid\n")
	_, err := Load(Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Fatalf("err=%v want CONFIG_INVALID", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "mode: [unclosed\n")
	_, err := Load(Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Fatalf("err=%v want CONFIG_INVALID", err)
	}
}

func TestLoadRejectsEmptyCategories(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "organization:\n  categories: []\n")
	_, err := Load(Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "categories") {
		t.Fatalf("err=%v want categories error", err)
	}
}
