package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickSeconds != 60 {
		t.Fatalf("expected default TickSeconds 60, got %d", cfg.TickSeconds)
	}
	if cfg.TickEnable {
		t.Fatal("expected ticking disabled by default")
	}
	if cfg.APMax != 3 {
		t.Fatalf("expected default APMax 3, got %d", cfg.APMax)
	}
	if cfg.DocumentPath != "./tinymud-world.json" {
		t.Fatalf("expected the default document path, got %q", cfg.DocumentPath)
	}
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("TICK_SECONDS", "30")
	t.Setenv("RATE_ENABLE", "true")
	t.Setenv("AI_ENDPOINT", "https://example.test/complete")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickSeconds != 30 {
		t.Fatalf("expected the overridden TickSeconds, got %d", cfg.TickSeconds)
	}
	if !cfg.RateEnable {
		t.Fatal("expected RateEnable overridden to true")
	}
	if cfg.AIEndpoint != "https://example.test/complete" {
		t.Fatalf("expected the overridden AI endpoint, got %q", cfg.AIEndpoint)
	}
}

func TestLoadRejectsMalformedEnvValue(t *testing.T) {
	t.Setenv("TICK_SECONDS", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a malformed integer env value")
	}
}

func TestDebounceWindowConvertsMillisecondsToDuration(t *testing.T) {
	cfg := Config{SaveDebounceMS: 2500}
	if cfg.DebounceWindow() != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s, got %v", cfg.DebounceWindow())
	}
}

func TestTickIntervalConvertsSecondsToDuration(t *testing.T) {
	cfg := Config{TickSeconds: 45}
	if cfg.TickInterval() != 45*time.Second {
		t.Fatalf("expected 45s, got %v", cfg.TickInterval())
	}
}

func TestGOAPConfigProjectsTunables(t *testing.T) {
	cfg := Config{APMax: 5, NeedDrop: 2, SocialDrop: 1, SocialRefill: 8, SocialSimTick: 4, SleepDrop: 1.5, SleepRefill: 9, SleepTicks: 2, NeedThreshold: 40}
	gc := cfg.GOAPConfig()
	if gc.APMax != 5 || gc.NeedThreshold != 40 || gc.SleepTicks != 2 {
		t.Fatalf("expected the GOAP config projected from Config, got %+v", gc)
	}
}

func TestLLMAdapterConfigProjectsTunables(t *testing.T) {
	cfg := Config{AIEndpoint: "https://host/complete", AIAPIKey: "secret", AITimeoutSeconds: 15, AIMaxResponseLen: 2000}
	lc := cfg.LLMAdapterConfig()
	if lc.Endpoint != cfg.AIEndpoint || lc.APIKey != cfg.AIAPIKey || lc.TimeoutSeconds != 15 || lc.MaxResponseLen != 2000 {
		t.Fatalf("expected the LLM adapter config projected from Config, got %+v", lc)
	}
}
