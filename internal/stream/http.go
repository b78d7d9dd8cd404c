package stream

import (
	"context"
	"io"
	"net/http"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/satindergrewal/soundscape/internal/audio"
)

// StreamName is advertised to players that show ICY metadata.
const StreamName = "soundscape mix"

// HTTPHandler serves the live mix as a chunked MP3 stream.
// Each connection spawns an FFmpeg process to encode PCM -> MP3 in real-time.
type HTTPHandler struct {
	broadcaster *Broadcaster
	bitrate     string
	log         zerolog.Logger
}

// NewHTTPHandler creates an HTTP stream handler. bitrate is an ffmpeg
// bitrate such as "192k".
func NewHTTPHandler(b *Broadcaster, bitrate string, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{broadcaster: b, bitrate: bitrate, log: logger}
}

func (h *HTTPHandler) encoderArgs() []string {
	return []string{
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", h.bitrate,
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", StreamName)
	if r.Method == http.MethodHead {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", h.encoderArgs()...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		h.log.Error().Err(err).Msg("http stream: stdin pipe")
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		h.log.Error().Err(err).Msg("http stream: stdout pipe")
		return
	}

	if err := cmd.Start(); err != nil {
		h.log.Error().Err(err).Msg("http stream: start ffmpeg")
		http.Error(w, "encoder unavailable", http.StatusServiceUnavailable)
		return
	}

	listener := h.broadcaster.Subscribe(KindHTTP)
	defer h.broadcaster.Unsubscribe(listener)

	log := h.log.With().Str("listener", listener.ID).Logger()
	log.Info().Int("total", h.broadcaster.Count(KindHTTP)).Msg("http listener connected")
	defer log.Info().Msg("http listener disconnected")

	// Feed PCM frames to FFmpeg
	go func() {
		defer stdin.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Done():
				return
			case frame, ok := <-listener.C:
				if !ok {
					return
				}
				if _, err := stdin.Write(audio.SamplesToBytes(frame)); err != nil {
					return
				}
			}
		}
	}()

	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Warn().Err(err).Msg("http stream: ffmpeg read")
			}
			break
		}
	}

	cancel()
	cmd.Wait()
}
