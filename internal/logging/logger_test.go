package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	baseDir = ""
	config = loggingConfig{}
	configLoaded = false
	logLevel = LevelInfo
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestDebugModeWritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
logging:
  debug_mode: true
  level: debug
`)

	resetState()
	defer resetState()

	if err := Initialize(dir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("Expected debug mode to be enabled")
	}

	Cart("added item %s qty=%d", "prod-1", 2)
	Session("restored identity")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	var cartFile string
	for _, e := range entries {
		if strings.Contains(e.Name(), "_cart.log") {
			cartFile = filepath.Join(dir, "logs", e.Name())
		}
	}
	if cartFile == "" {
		t.Fatalf("Expected a cart log file, got %v", entries)
	}

	data, err := os.ReadFile(cartFile)
	if err != nil {
		t.Fatalf("Failed to read cart log: %v", err)
	}
	if !strings.Contains(string(data), "added item prod-1 qty=2") {
		t.Errorf("Cart log missing entry: %s", data)
	}
}

func TestProductionModeIsSilent(t *testing.T) {
	dir := t.TempDir()
	// No config file at all = production mode

	resetState()
	defer resetState()

	if err := Initialize(dir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("Expected debug mode to be disabled")
	}

	Cart("should not appear anywhere")

	if _, err := os.Stat(filepath.Join(dir, "logs")); !os.IsNotExist(err) {
		t.Error("Expected no logs directory in production mode")
	}
}

func TestCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
logging:
  debug_mode: true
  level: debug
  categories:
    cart: true
    api: false
`)

	resetState()
	defer resetState()

	if err := Initialize(dir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsCategoryEnabled(CategoryCart) {
		t.Error("Expected cart category enabled")
	}
	if IsCategoryEnabled(CategoryAPI) {
		t.Error("Expected api category disabled")
	}
	// Unlisted categories default to enabled
	if !IsCategoryEnabled(CategoryUI) {
		t.Error("Expected unlisted ui category enabled")
	}
}

func TestDisabledLoggerIsNoOp(t *testing.T) {
	resetState()
	defer resetState()

	// Get before Initialize must hand back a safe no-op logger
	l := Get(CategoryOrder)
	l.Info("no target yet")
	l.Error("still fine")
}
