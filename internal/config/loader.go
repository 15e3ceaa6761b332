package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file, overlays environment variables and
// validates the result. A missing file is not an error; defaults apply.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	cfg.applyEnv()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	ic := cfg.Interview

	if ic.SilenceTimerMS <= 0 {
		return fmt.Errorf("silence_timer_ms must be positive")
	}
	if ic.SilenceThresholdMS <= 0 || ic.SilenceThresholdMS > ic.SilenceTimerMS {
		return fmt.Errorf("silence_threshold_ms must be positive and not exceed silence_timer_ms")
	}
	if ic.FollowUpMinWords < 0 {
		return fmt.Errorf("follow_up_min_words cannot be negative")
	}
	if ic.FollowUpProbability < 0 || ic.FollowUpProbability > 1 {
		return fmt.Errorf("follow_up_probability must be within [0,1]")
	}
	if ic.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive")
	}
	if ic.SpeechMSPerWord <= 0 || ic.SpeechMinDelayMS < 0 {
		return fmt.Errorf("speech pacing values must be positive")
	}
	if cfg.HTTPPort == "" {
		return fmt.Errorf("http_port must be set")
	}
	return nil
}
