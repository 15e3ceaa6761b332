package config

import "os"

// Config is the full server configuration. Environment variables override the
// YAML file, which overrides the built-in defaults.
type Config struct {
	HTTPPort        string `yaml:"http_port"`
	MongoURI        string `yaml:"mongo_uri"`
	RedisAddr       string `yaml:"redis_addr"`
	QuestionBaseURL string `yaml:"question_base_url"`
	DataDir         string `yaml:"data_dir"`
	JWTSecret       string `yaml:"jwt_secret"`

	Interview InterviewConfig `yaml:"interview"`
}

// InterviewConfig tunes the session machine and the heuristics around it.
type InterviewConfig struct {
	// Silence detection: the timer fires after SilenceTimerMS and ends the
	// answer if no transcript update arrived within SilenceThresholdMS.
	SilenceTimerMS     int `yaml:"silence_timer_ms"`
	SilenceThresholdMS int `yaml:"silence_threshold_ms"`

	// Spoken-question pacing (interview mode): listening starts after
	// words*SpeechMSPerWord, at least SpeechMinDelayMS.
	SpeechMSPerWord  int `yaml:"speech_ms_per_word"`
	SpeechMinDelayMS int `yaml:"speech_min_delay_ms"`

	// Pause between evaluation and the next question.
	AdvanceDelayMS int `yaml:"advance_delay_ms"`

	FollowUpMinWords    int     `yaml:"follow_up_min_words"`
	FollowUpProbability float64 `yaml:"follow_up_probability"`

	HistoryLimit        int `yaml:"history_limit"`
	QuestionCacheTTLMin int `yaml:"question_cache_ttl_min"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPPort:        "8080",
		MongoURI:        "",
		RedisAddr:       "",
		QuestionBaseURL: "",
		DataDir:         "data",
		JWTSecret:       "dev-secret-change-in-production",
		Interview: InterviewConfig{
			SilenceTimerMS:      3500,
			SilenceThresholdMS:  3000,
			SpeechMSPerWord:     500,
			SpeechMinDelayMS:    1000,
			AdvanceDelayMS:      2000,
			FollowUpMinWords:    20,
			FollowUpProbability: 0.6,
			HistoryLimit:        1000,
			QuestionCacheTTLMin: 5,
		},
	}
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() {
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.QuestionBaseURL = getEnv("QUESTION_BASE_URL", c.QuestionBaseURL)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
