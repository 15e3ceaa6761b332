package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want default 8080", cfg.HTTPPort)
	}
	if cfg.Interview.SilenceTimerMS != 3500 || cfg.Interview.SilenceThresholdMS != 3000 {
		t.Errorf("silence defaults = %d/%d, want 3500/3000", cfg.Interview.SilenceTimerMS, cfg.Interview.SilenceThresholdMS)
	}
	if cfg.Interview.HistoryLimit != 1000 {
		t.Errorf("HistoryLimit = %d, want 1000", cfg.Interview.HistoryLimit)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
http_port: "9090"
interview:
  silence_timer_ms: 5000
  silence_threshold_ms: 4000
  speech_ms_per_word: 500
  speech_min_delay_ms: 1000
  advance_delay_ms: 2000
  follow_up_min_words: 10
  follow_up_probability: 0.5
  history_limit: 200
  question_cache_ttl_min: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.Interview.FollowUpMinWords != 10 || cfg.Interview.HistoryLimit != 200 {
		t.Errorf("interview overrides not applied: %+v", cfg.Interview)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `http_port: "9090"`)
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "7070" {
		t.Errorf("HTTPPort = %q, want env value 7070", cfg.HTTPPort)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold above timer", "interview:\n  silence_timer_ms: 1000\n  silence_threshold_ms: 2000\n"},
		{"probability above one", "interview:\n  follow_up_probability: 1.5\n"},
		{"zero history limit", "interview:\n  history_limit: -1\n"},
		{"malformed yaml", "interview: [not a map\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			if _, err := Load(path); err == nil {
				t.Error("Load accepted invalid config")
			}
		})
	}
}
