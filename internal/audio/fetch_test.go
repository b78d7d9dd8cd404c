package audio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes n samples of a constant tone at the given rate.
func writeWAV(t *testing.T, path string, rate beep.SampleRate, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, &constStreamer{value: 0.25, n: n}, format))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base     string
		location string
		want     string
	}{
		{"/srv/ambience", "sounds/rain.mp3", filepath.Join("/srv/ambience", "sounds", "rain.mp3")},
		{".", "sounds/rain.mp3", filepath.Join("sounds", "rain.mp3")},
		{"/srv", "/abs/rain.mp3", "/abs/rain.mp3"},
		{"https://cdn.example.com/amb", "sounds/rain.mp3", "https://cdn.example.com/amb/sounds/rain.mp3"},
		{"https://cdn.example.com", "sounds/rain.mp3", "https://cdn.example.com/sounds/rain.mp3"},
		{"/srv", "http://other.example.com/rain.mp3", "http://other.example.com/rain.mp3"},
	}
	for _, tt := range tests {
		f := NewFetcher(tt.base, time.Second)
		assert.Equal(t, tt.want, f.Resolve(tt.location), "base=%s location=%s", tt.base, tt.location)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mp3", extension("sounds/rain.MP3"))
	assert.Equal(t, ".wav", extension("https://cdn.example.com/rain.wav?v=2"))
	assert.Equal(t, "", extension("sounds/rain"))
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sounds"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sounds", "rain.bin"), []byte("drops"), 0644))

	f := NewFetcher(dir, time.Second)
	rc, err := f.Open(context.Background(), "sounds/rain.bin")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "drops", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	f := NewFetcher(t.TempDir(), time.Second)
	_, err := f.Open(context.Background(), "sounds/none.mp3")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/amb/sounds/ocean.bin" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("waves"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/amb", time.Second)
	rc, err := f.Open(context.Background(), "sounds/ocean.bin")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "waves", string(data))

	_, err = f.Open(context.Background(), "sounds/missing.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOpenHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(srv.URL, 50*time.Millisecond)
	_, err := f.Open(context.Background(), "sounds/stalled.mp3")
	assert.Error(t, err)
}

func TestLoadWAV(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "sounds", "birds.wav"), SampleRate, 4800)

	f := NewFetcher(dir, time.Second)
	buf, err := f.Load(context.Background(), "sounds/birds.wav")
	require.NoError(t, err)
	assert.Equal(t, 4800, buf.Len())
	assert.Equal(t, Format, buf.Format())

	samples := make([][2]float64, 10)
	n, ok := buf.Streamer(0, buf.Len()).Stream(samples)
	require.True(t, ok)
	require.Equal(t, 10, n)
	assert.InDelta(t, 0.25, samples[5][0], 1e-3)
}

func TestLoadWAVResamples(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, filepath.Join(dir, "fire.wav"), 24000, 2400) // 100ms at 24kHz

	f := NewFetcher(dir, time.Second)
	buf, err := f.Load(context.Background(), "fire.wav")
	require.NoError(t, err)
	// 100ms at 48kHz, allow for resampler edge samples
	assert.InDelta(t, 4800, buf.Len(), 16)
}

func TestBufferEmpty(t *testing.T) {
	_, err := buffer(&constStreamer{value: 0.25}, Format)
	assert.ErrorIs(t, err, ErrEmptyTrack)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thunder.wav"), []byte("not a wav file"), 0644))

	f := NewFetcher(dir, time.Second)
	_, err := f.Load(context.Background(), "thunder.wav")
	assert.Error(t, err)
}
