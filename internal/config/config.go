package config

import (
	"os"
	"strconv"
	"time"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Sounds is the base that track locations are resolved against.
	// Either a directory or an http(s) URL.
	Sounds       string
	FetchTimeout time.Duration // per-resource fetch timeout for remote bases

	// Stream encoding
	MP3Bitrate  string // ffmpeg -b:a value, e.g. "192k"
	OpusBitrate int    // bits per second

	// Speaker output buffer (playback latency)
	SpeakerBuffer time.Duration

	// Logging
	LogLevel  string // zerolog level name
	LogFormat string // console or json

	// Gain applied to the whole mix before output, guards against clipping
	// when every track plays at full volume.
	MasterGain float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("SOUNDSCAPE_PORT", 8080),

		Sounds:       envStr("SOUNDSCAPE_SOUNDS", "."),
		FetchTimeout: envDuration("SOUNDSCAPE_FETCH_TIMEOUT", 30*time.Second),

		MP3Bitrate:  envStr("SOUNDSCAPE_MP3_BITRATE", "192k"),
		OpusBitrate: envInt("SOUNDSCAPE_OPUS_BITRATE", 128000),

		SpeakerBuffer: envDuration("SOUNDSCAPE_SPEAKER_BUFFER", 100*time.Millisecond),

		LogLevel:  envStr("SOUNDSCAPE_LOG_LEVEL", "info"),
		LogFormat: envStr("SOUNDSCAPE_LOG_FORMAT", "console"),

		MasterGain: envFloat("SOUNDSCAPE_MASTER_GAIN", 0.5),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("750ms") or plain seconds ("5").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
