package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var envVars = []string{
	"SOUNDSCAPE_PORT", "SOUNDSCAPE_SOUNDS", "SOUNDSCAPE_FETCH_TIMEOUT",
	"SOUNDSCAPE_MP3_BITRATE", "SOUNDSCAPE_OPUS_BITRATE",
	"SOUNDSCAPE_SPEAKER_BUFFER", "SOUNDSCAPE_LOG_LEVEL",
	"SOUNDSCAPE_LOG_FORMAT", "SOUNDSCAPE_MASTER_GAIN",
}

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might interfere
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ".", cfg.Sounds)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "192k", cfg.MP3Bitrate)
	assert.Equal(t, 128000, cfg.OpusBitrate)
	assert.Equal(t, 100*time.Millisecond, cfg.SpeakerBuffer)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 0.5, cfg.MasterGain)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SOUNDSCAPE_PORT", "3000")
	t.Setenv("SOUNDSCAPE_SOUNDS", "https://cdn.example.com/ambience")
	t.Setenv("SOUNDSCAPE_FETCH_TIMEOUT", "5s")
	t.Setenv("SOUNDSCAPE_MP3_BITRATE", "128k")
	t.Setenv("SOUNDSCAPE_OPUS_BITRATE", "64000")
	t.Setenv("SOUNDSCAPE_SPEAKER_BUFFER", "250ms")
	t.Setenv("SOUNDSCAPE_LOG_LEVEL", "debug")
	t.Setenv("SOUNDSCAPE_LOG_FORMAT", "json")
	t.Setenv("SOUNDSCAPE_MASTER_GAIN", "0.8")

	cfg := Load()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "https://cdn.example.com/ambience", cfg.Sounds)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "128k", cfg.MP3Bitrate)
	assert.Equal(t, 64000, cfg.OpusBitrate)
	assert.Equal(t, 250*time.Millisecond, cfg.SpeakerBuffer)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 0.8, cfg.MasterGain)
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SOUNDSCAPE_PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 8080, cfg.Port, "invalid int env should fall back to default")
}

func TestEnvDurationPlainSeconds(t *testing.T) {
	t.Setenv("SOUNDSCAPE_FETCH_TIMEOUT", "12")
	cfg := Load()
	assert.Equal(t, 12*time.Second, cfg.FetchTimeout)
}

func TestEnvDurationInvalidFallsBack(t *testing.T) {
	t.Setenv("SOUNDSCAPE_FETCH_TIMEOUT", "soon")
	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestEnvStrEmpty(t *testing.T) {
	// Empty string should use fallback
	t.Setenv("SOUNDSCAPE_SOUNDS", "")
	cfg := Load()
	assert.Equal(t, ".", cfg.Sounds)
}
