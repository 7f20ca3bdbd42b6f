package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if !cfg.General.Snapshots {
		t.Error("expected Snapshots to be enabled by default")
	}
	if cfg.General.NetworkRetries != 3 {
		t.Errorf("expected 3 network retries, got %d", cfg.General.NetworkRetries)
	}

	if !cfg.Output.Color {
		t.Error("expected Color to be true by default")
	}
	if !cfg.Output.Unicode {
		t.Error("expected Unicode to be true by default")
	}
	if cfg.Output.Verbose {
		t.Error("expected Verbose to be false by default")
	}

	if cfg.General.AutoConfirm {
		t.Error("expected AutoConfirm to be false by default")
	}
	if cfg.General.DryRun {
		t.Error("expected DryRun to be false by default")
	}

	if cfg.Dashboard.Port != 8080 {
		t.Errorf("expected default dashboard port 8080, got %d", cfg.Dashboard.Port)
	}
	if cfg.Dashboard.BindAddress != "127.0.0.1" {
		t.Errorf("expected dashboard to bind loopback by default, got %q", cfg.Dashboard.BindAddress)
	}
	if cfg.Dashboard.PollInterval != 2 {
		t.Errorf("expected 2s poll interval, got %d", cfg.Dashboard.PollInterval)
	}
}

func TestResolveAlias(t *testing.T) {
	cfg := &Config{
		Aliases: map[string]string{
			"vim":  "neovim",
			"code": "visual-studio-code",
		},
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"vim", "neovim"},
		{"code", "visual-studio-code"},
		{"git", "git"}, // No alias, returns original
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := cfg.ResolveAlias(tt.input)
			if result != tt.expected {
				t.Errorf("ResolveAlias(%s) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolveAliases(t *testing.T) {
	cfg := &Config{
		Aliases: map[string]string{
			"vim": "neovim",
		},
	}

	input := []string{"vim", "git", "curl"}
	expected := []string{"neovim", "git", "curl"}

	result := cfg.ResolveAliases(input)

	if len(result) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(result))
	}

	for i, r := range result {
		if r != expected[i] {
			t.Errorf("result[%d] = %s, want %s", i, r, expected[i])
		}
	}
}

func TestGetManagerConfig(t *testing.T) {
	cfg := &Config{
		Managers: map[string]ManagerConfig{
			"apt":  {UseNala: true},
			"snap": {AllowClassic: true},
		},
	}

	aptCfg := cfg.GetManagerConfig("apt")
	if !aptCfg.UseNala {
		t.Error("expected UseNala to be true for apt")
	}

	// Non-existing manager returns empty config
	brewCfg := cfg.GetManagerConfig("brew")
	if brewCfg.UseNala || brewCfg.AllowClassic {
		t.Error("expected empty config for unknown manager")
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Color: true},
	}

	os.Unsetenv("NO_COLOR")
	if !cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return true")
	}

	os.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when NO_COLOR is set")
	}
	os.Unsetenv("NO_COLOR")

	cfg.Output.Color = false
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when Color is false")
	}
}

func TestLoadSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.Aliases["test"] = "test-package"
	cfg.Dashboard.Port = 9090

	err := cfg.SaveTo(configPath)
	if err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if loaded.ResolveAlias("test") != "test-package" {
		t.Error("loaded config doesn't have expected alias")
	}
	if loaded.Dashboard.Port != 9090 {
		t.Errorf("expected dashboard port 9090, got %d", loaded.Dashboard.Port)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadFrom("/non/existent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadFrom() should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadFrom() should return default config for non-existent file")
	}

	if !cfg.Output.Color {
		t.Error("expected default Color to be true")
	}
}
