package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SIM_MAX_MASS_RATIO", "")
	t.Setenv("SIM_DEFAULT_FPS", "")

	cfg := Load()
	if cfg.Environment != "development" {
		t.Errorf("Expected development environment, got %q", cfg.Environment)
	}
	if cfg.MaxMassRatio != 1e8 {
		t.Errorf("Expected default max mass ratio 1e8, got %v", cfg.MaxMassRatio)
	}
	if cfg.DefaultFPS != 30 {
		t.Errorf("Expected default fps 30, got %d", cfg.DefaultFPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SIM_MAX_MASS_RATIO", "1e12")
	t.Setenv("SIM_DEFAULT_TOTAL_TIME", "25.5")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg := Load()
	if cfg.Environment != "production" {
		t.Errorf("Expected production, got %q", cfg.Environment)
	}
	if cfg.MaxMassRatio != 1e12 {
		t.Errorf("Expected 1e12, got %v", cfg.MaxMassRatio)
	}
	if cfg.DefaultTotalTime != 25.5 {
		t.Errorf("Expected 25.5, got %v", cfg.DefaultTotalTime)
	}
	if cfg.CacheTTLSeconds != 60 {
		t.Errorf("Expected 60, got %d", cfg.CacheTTLSeconds)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SIM_MAX_FRAMES", "lots")
	t.Setenv("SIM_SOUND_MAX_SECONDS", "x")

	cfg := Load()
	if cfg.MaxFrames != 30 {
		t.Errorf("Expected fallback 30, got %d", cfg.MaxFrames)
	}
	if cfg.SoundMaxSeconds != 5 {
		t.Errorf("Expected fallback 5, got %v", cfg.SoundMaxSeconds)
	}
}
