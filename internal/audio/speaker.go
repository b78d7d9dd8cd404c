package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"
)

// Speaker plays a streamer on the default sound card.
type Speaker struct {
	src    beep.Streamer
	buffer time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	started bool
}

// NewSpeaker creates a speaker output. buffer sets the playback latency.
func NewSpeaker(src beep.Streamer, buffer time.Duration, logger zerolog.Logger) *Speaker {
	return &Speaker{src: src, buffer: buffer, log: logger}
}

// Resume opens the sound card and starts playing. Calling it again is a no-op.
func (s *Speaker) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := speaker.Init(SampleRate, Format.SampleRate.N(s.buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s.src)
	s.started = true
	s.log.Info().Dur("buffer", s.buffer).Msg("speaker output resumed")
	return nil
}

// Close releases the sound card.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		speaker.Close()
		s.started = false
	}
}
