package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"frame/internal/config"
	"frame/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

type envOption func(map[string]any)

func withSection(name string, values map[string]any) envOption {
	return func(doc map[string]any) {
		doc[name] = values
	}
}

// setupCLITestEnv writes a config file pointing at temp state and log
// directories and isolates HOME and provider environment variables.
func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()
	for _, name := range []string{"YOUTUBE_API_KEY", "TAVILY_API_KEY", "GEMINI_API_KEY", "FRAME_API_URL", "FRAME_API_TOKEN", "NTFY_TOPIC"} {
		t.Setenv(name, "")
	}

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	doc := map[string]any{
		"paths": map[string]any{
			"state_dir":         cfg.Paths.StateDir,
			"log_dir":           cfg.Paths.LogDir,
			"gap_analysis_path": cfg.Paths.GapAnalysisPath,
			"api_bind":          "127.0.0.1:1",
		},
		"youtube": map[string]any{"api_key": "test"},
		"logging": map[string]any{"level": "error"},
	}
	for _, opt := range opts {
		opt(doc)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
