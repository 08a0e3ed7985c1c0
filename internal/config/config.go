// Package config loads TinyMUD's recognized options (Section 6.5) from
// the environment. Grounded on louisbranch-fracturing.space's
// internal/platform/config (env.ParseEnv wrapper + struct tags), since
// the teacher repo has no environment-driven config of its own.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/mini-world/internal/goap"
	"github.com/talgya/mini-world/internal/llmadapter"
)

// Config holds every recognized option from Section 6.5.
type Config struct {
	TickSeconds   int  `env:"TICK_SECONDS" envDefault:"60"`
	TickEnable    bool `env:"TICK_ENABLE" envDefault:"false"`
	APMax         int  `env:"AP_MAX" envDefault:"3"`

	NeedDrop      float64 `env:"NEED_DROP" envDefault:"1.0"`
	SocialDrop    float64 `env:"SOCIAL_DROP" envDefault:"0.5"`
	SocialRefill  float64 `env:"SOCIAL_REFILL" envDefault:"10"`
	SocialSimTick float64 `env:"SOCIAL_SIM_TICK" envDefault:"5"`
	SleepDrop     float64 `env:"SLEEP_DROP" envDefault:"0.75"`
	SleepRefill   float64 `env:"SLEEP_REFILL" envDefault:"10"`
	SleepTicks    int     `env:"SLEEP_TICKS" envDefault:"3"`
	NeedThreshold float64 `env:"NEED_THRESHOLD" envDefault:"50"`

	SaveDebounceMS     int  `env:"SAVE_DEBOUNCE_MS" envDefault:"5000"`
	MaxMessageLen      int  `env:"MAX_MESSAGE_LEN" envDefault:"1000"`
	RateEnable         bool `env:"RATE_ENABLE" envDefault:"false"`
	AITimeoutSeconds   int  `env:"AI_TIMEOUT_SECONDS" envDefault:"30"`
	AIMaxResponseLen   int  `env:"AI_MAX_RESPONSE_LENGTH" envDefault:"10000"`

	AIEndpoint string `env:"AI_ENDPOINT" envDefault:""`
	AIAPIKey   string `env:"AI_API_KEY" envDefault:""`

	DocumentPath string `env:"DOCUMENT_PATH" envDefault:"./tinymud-world.json"`
	ArchivePath  string `env:"ARCHIVE_PATH" envDefault:"./tinymud-archive.db"`
}

// Load reads Config from the environment, applying the Section 6.5
// defaults for anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DebounceWindow converts SaveDebounceMS to a time.Duration for the
// persistence façade.
func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

// TickInterval converts TickSeconds to a time.Duration for the scheduler.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// GOAPConfig projects the needs/planning tunables into goap.Config.
func (c Config) GOAPConfig() goap.Config {
	return goap.Config{
		APMax:         c.APMax,
		NeedDrop:      c.NeedDrop,
		SocialDrop:    c.SocialDrop,
		SocialRefill:  c.SocialRefill,
		SocialSimTick: c.SocialSimTick,
		SleepDrop:     c.SleepDrop,
		SleepRefill:   c.SleepRefill,
		SleepTicks:    c.SleepTicks,
		NeedThreshold: c.NeedThreshold,
	}
}

// LLMAdapterConfig projects the AI tunables into llmadapter.Config.
func (c Config) LLMAdapterConfig() llmadapter.Config {
	return llmadapter.Config{
		Endpoint:       c.AIEndpoint,
		APIKey:         c.AIAPIKey,
		TimeoutSeconds: c.AITimeoutSeconds,
		MaxResponseLen: c.AIMaxResponseLen,
	}
}
