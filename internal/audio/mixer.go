package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog"

	"github.com/satindergrewal/soundscape/internal/catalog"
)

// ErrAlreadyStarted is returned when a track is started while it is still
// loading or already playing.
var ErrAlreadyStarted = errors.New("track already started")

// TrackState is the playback lifecycle of one track.
type TrackState int

const (
	NotStarted TrackState = iota
	Loading
	Playing
	Failed
)

func (s TrackState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("TrackState(%d)", int(s))
}

func (s TrackState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Loader turns a track location into decoded audio.
type Loader interface {
	Load(ctx context.Context, location string) (*beep.Buffer, error)
}

// TrackStatus is a point-in-time view of one track.
type TrackStatus struct {
	ID    string
	State TrackState
	Gain  float64 // meaningful only while Playing
	Err   error   // last load failure
}

type voice struct {
	state TrackState
	level float64
	gain  *effects.Gain // nil until Playing
	err   error
}

// Mixer owns the audio graph: one looping source per track, each through
// its own gain node into a shared bus. It streams the summed mix.
type Mixer struct {
	catalog *catalog.Catalog
	loader  Loader
	log     zerolog.Logger

	mu     sync.Mutex
	voices map[string]*voice
	bus    beep.Mixer
	master float64
}

// NewMixer creates a mixer with every registered track NotStarted.
func NewMixer(cat *catalog.Catalog, loader Loader, logger zerolog.Logger) *Mixer {
	m := &Mixer{
		catalog: cat,
		loader:  loader,
		log:     logger,
		voices:  make(map[string]*voice),
		master:  1,
	}
	for _, id := range cat.TrackIDs() {
		m.voices[id] = &voice{}
	}
	return m
}

// SetMaster sets the gain applied to the summed mix.
func (m *Mixer) SetMaster(gain float64) {
	m.mu.Lock()
	m.master = gain
	m.mu.Unlock()
}

// StartPlayback fetches and decodes the track, then connects a looping
// source through a new gain node (gain 1) to the bus. It blocks until the
// track is playing or has failed. A failed track may be started again.
func (m *Mixer) StartPlayback(ctx context.Context, trackID string) error {
	track, ok := m.catalog.Track(trackID)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownTrack, trackID)
	}

	m.mu.Lock()
	v := m.voices[trackID]
	if v.state == Loading || v.state == Playing {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, trackID)
	}
	v.state = Loading
	v.err = nil
	m.mu.Unlock()

	start := time.Now()
	buf, err := m.loader.Load(ctx, track.Location)
	if err != nil {
		m.mu.Lock()
		v.state = Failed
		v.err = err
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("track", trackID).Str("location", track.Location).Msg("track failed to load")
		return fmt.Errorf("start %s: %w", trackID, err)
	}

	gain := &effects.Gain{
		Streamer: beep.Loop(-1, buf.Streamer(0, buf.Len())),
		Gain:     0, // multiplier is 1 + Gain
	}

	m.mu.Lock()
	v.gain = gain
	v.level = 1
	v.state = Playing
	m.bus.Add(gain)
	m.mu.Unlock()

	m.log.Info().
		Str("track", trackID).
		Dur("load", time.Since(start)).
		Dur("length", Format.SampleRate.D(buf.Len())).
		Msg("track playing")
	return nil
}

// SetVolume sets the track's gain. Before the track is playing this is a
// silent no-op. Values are not clamped.
func (m *Mixer) SetVolume(trackID string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.voices[trackID]
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownTrack, trackID)
	}
	if v.gain == nil {
		return nil
	}
	v.level = value
	v.gain.Gain = value - 1
	return nil
}

// Volume returns the track's current gain and whether it has a gain node.
func (m *Mixer) Volume(trackID string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voices[trackID]
	if !ok || v.gain == nil {
		return 0, false
	}
	return v.level, true
}

// State returns the track's lifecycle state.
func (m *Mixer) State(trackID string) TrackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.voices[trackID]; ok {
		return v.state
	}
	return NotStarted
}

// Snapshot returns every track's status in registry order.
func (m *Mixer) Snapshot() []TrackStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.catalog.TrackIDs()
	out := make([]TrackStatus, 0, len(ids))
	for _, id := range ids {
		v := m.voices[id]
		out = append(out, TrackStatus{ID: id, State: v.state, Gain: v.level, Err: v.err})
	}
	return out
}

// Stream fills samples with the current mix. It never ends: with nothing
// playing it produces silence.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.bus.Stream(samples)
	if !ok {
		n = 0
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	if m.master != 1 {
		for i := range samples {
			samples[i][0] *= m.master
			samples[i][1] *= m.master
		}
	}
	return len(samples), true
}

// Err always returns nil; load failures are reported per track in Snapshot.
func (m *Mixer) Err() error { return nil }
