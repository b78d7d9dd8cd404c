// Package console binds the mixer controls: one start control, a volume
// slider per track and one button per preset.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/catalog"
)

var (
	ErrAlreadyRunning = errors.New("console already running")
	ErrVolumeRange    = errors.New("volume out of range 0-1")
)

// State is the console lifecycle. Running is terminal.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Output is the audio subsystem the mix is delivered to.
type Output interface {
	Resume(ctx context.Context) error
}

// Mixer is the part of *audio.Mixer the console drives.
type Mixer interface {
	StartPlayback(ctx context.Context, trackID string) error
	SetVolume(trackID string, value float64) error
	Snapshot() []audio.TrackStatus
}

// TrackView is one slider row.
type TrackView struct {
	ID     string           `json:"id"`
	Label  string           `json:"label"`
	Slider string           `json:"slider"` // element key
	Value  float64          `json:"value"`  // displayed slider position
	Gain   float64          `json:"gain"`
	State  audio.TrackState `json:"state"`
	Error  string           `json:"error,omitempty"`
}

// Status is what a control surface renders.
type Status struct {
	State        State            `json:"state"`
	StartVisible bool             `json:"start_visible"`
	StartError   string           `json:"start_error,omitempty"`
	Tracks       []TrackView      `json:"tracks"`
	Presets      []catalog.Preset `json:"presets"`
}

// Console owns the control state shared by every surface.
type Console struct {
	catalog *catalog.Catalog
	mixer   Mixer
	output  Output
	log     zerolog.Logger

	mu         sync.Mutex
	state      State
	sliders    map[string]float64
	startErr   error
	inflight   sync.WaitGroup
	startCount map[string]int
}

// New creates a stopped console. Every slider starts at full volume.
func New(cat *catalog.Catalog, mixer Mixer, output Output, logger zerolog.Logger) *Console {
	c := &Console{
		catalog:    cat,
		mixer:      mixer,
		output:     output,
		log:        logger,
		sliders:    make(map[string]float64),
		startCount: make(map[string]int),
	}
	for _, id := range cat.TrackIDs() {
		c.sliders[id] = 1
	}
	return c
}

// Start resumes the output, then starts every track without waiting for
// any of them, and hides the start control. If the output cannot resume
// the console stays stopped.
func (c *Console) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Running {
		return ErrAlreadyRunning
	}
	if err := c.output.Resume(ctx); err != nil {
		c.startErr = err
		c.log.Error().Err(err).Msg("resume audio output")
		return fmt.Errorf("resume audio output: %w", err)
	}
	c.startErr = nil
	c.state = Running

	// Playback outlives the request that triggered it.
	playCtx := context.WithoutCancel(ctx)
	for _, id := range c.catalog.TrackIDs() {
		c.startCount[id]++
		c.inflight.Add(1)
		go func(id string) {
			defer c.inflight.Done()
			if err := c.mixer.StartPlayback(playCtx, id); err != nil {
				c.log.Warn().Err(err).Str("track", id).Msg("track unavailable")
			}
		}(id)
	}
	c.log.Info().Int("tracks", len(c.startCount)).Msg("soundscape started")
	return nil
}

// Wait blocks until every playback start launched by Start has finished.
func (c *Console) Wait() {
	c.inflight.Wait()
}

// SetVolume moves a track's slider and sets its gain.
func (c *Console) SetVolume(trackID string, value float64) error {
	if !(value >= 0 && value <= 1) { // also rejects NaN
		return fmt.Errorf("%w: %v", ErrVolumeRange, value)
	}
	if _, ok := c.catalog.Track(trackID); !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownTrack, trackID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mixer.SetVolume(trackID, value); err != nil {
		return err
	}
	c.sliders[trackID] = value
	return nil
}

// ApplyPreset sets every volume the preset names and moves the sliders to match.
func (c *Console) ApplyPreset(presetID string) error {
	p, ok := c.catalog.Preset(presetID)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownPreset, presetID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for track, v := range p.Volumes {
		if err := c.mixer.SetVolume(track, v); err != nil {
			return err
		}
		c.sliders[track] = v
	}
	c.log.Debug().Str("preset", presetID).Msg("preset applied")
	return nil
}

// Slider returns the displayed position of a track's slider.
func (c *Console) Slider(trackID string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.sliders[trackID]
	return v, ok
}

// starts reports how many times playback was requested for a track.
func (c *Console) starts(trackID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startCount[trackID]
}

// Status returns a snapshot for rendering.
func (c *Console) Status() Status {
	snap := c.mixer.Snapshot()
	byID := make(map[string]audio.TrackStatus, len(snap))
	for _, ts := range snap {
		byID[ts.ID] = ts
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:        c.state,
		StartVisible: c.state == Stopped,
		Presets:      c.catalog.Presets(),
	}
	if c.startErr != nil {
		st.StartError = c.startErr.Error()
	}
	for _, t := range c.catalog.Tracks() {
		ts := byID[t.ID]
		view := TrackView{
			ID:     t.ID,
			Label:  t.Label,
			Slider: catalog.SliderKey(t.ID),
			Value:  c.sliders[t.ID],
			Gain:   ts.Gain,
			State:  ts.State,
		}
		if ts.Err != nil {
			view.Error = ts.Err.Error()
		}
		st.Tracks = append(st.Tracks, view)
	}
	return st
}
