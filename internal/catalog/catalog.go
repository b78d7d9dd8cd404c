// Package catalog holds the fixed set of tracks and presets the mixer is
// built from. Both are embedded at build time and validated on load.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed soundscape.yaml
var embedded []byte

var (
	ErrUnknownTrack  = errors.New("unknown track")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Track is one named, independently controllable looping layer.
type Track struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Location string `yaml:"location" json:"location"` // resolved against the sounds base
}

// Preset is a named volume per track, applied all at once.
type Preset struct {
	ID      string             `yaml:"id" json:"id"`
	Label   string             `yaml:"label" json:"label"`
	Button  string             `yaml:"button" json:"button"` // UI element key
	Volumes map[string]float64 `yaml:"volumes" json:"volumes"`
}

// Catalog is the read-only track registry and preset table.
type Catalog struct {
	tracks  []Track
	presets []Preset

	trackIdx  map[string]int
	presetIdx map[string]int
}

type document struct {
	Tracks  []Track  `yaml:"tracks"`
	Presets []Preset `yaml:"presets"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		trackIdx:  make(map[string]int, len(doc.Tracks)),
		presetIdx: make(map[string]int, len(doc.Presets)),
	}
	if len(doc.Tracks) == 0 {
		return nil, errors.New("catalog has no tracks")
	}
	for i, t := range doc.Tracks {
		if t.ID == "" {
			return nil, fmt.Errorf("track %d: missing id", i)
		}
		if t.Location == "" {
			return nil, fmt.Errorf("track %s: missing location", t.ID)
		}
		if _, dup := c.trackIdx[t.ID]; dup {
			return nil, fmt.Errorf("track %s: duplicate id", t.ID)
		}
		if t.Label == "" {
			t.Label = t.ID
		}
		c.trackIdx[t.ID] = len(c.tracks)
		c.tracks = append(c.tracks, t)
	}

	for i, p := range doc.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("preset %d: missing id", i)
		}
		if _, dup := c.presetIdx[p.ID]; dup {
			return nil, fmt.Errorf("preset %s: duplicate id", p.ID)
		}
		for track, v := range p.Volumes {
			if _, ok := c.trackIdx[track]; !ok {
				return nil, fmt.Errorf("preset %s: %w %q", p.ID, ErrUnknownTrack, track)
			}
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("preset %s: volume for %s out of range 0-1: %v", p.ID, track, v)
			}
		}
		if p.Label == "" {
			p.Label = p.ID
		}
		c.presetIdx[p.ID] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// Tracks returns all tracks in declaration order.
func (c *Catalog) Tracks() []Track {
	out := make([]Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// TrackIDs returns all track ids in declaration order.
func (c *Catalog) TrackIDs() []string {
	ids := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		ids[i] = t.ID
	}
	return ids
}

func (c *Catalog) Track(id string) (Track, bool) {
	i, ok := c.trackIdx[id]
	if !ok {
		return Track{}, false
	}
	return c.tracks[i], true
}

// Presets returns all presets in declaration order.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.clone()
	}
	return out
}

// Preset looks up a preset. The returned volumes map is a copy.
func (c *Catalog) Preset(id string) (Preset, bool) {
	i, ok := c.presetIdx[id]
	if !ok {
		return Preset{}, false
	}
	return c.presets[i].clone(), true
}

func (p Preset) clone() Preset {
	vols := make(map[string]float64, len(p.Volumes))
	for k, v := range p.Volumes {
		vols[k] = v
	}
	p.Volumes = vols
	return p
}

// SliderKey is the UI element key of a track's volume slider.
func SliderKey(trackID string) string {
	return trackID + "-slider"
}
