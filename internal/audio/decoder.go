package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrEmptyTrack is returned when a resource decodes to zero samples.
var ErrEmptyTrack = errors.New("decoded track is empty")

// Format is the in-memory format of every decoded track.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: Channels, Precision: BitDepth / 8}

// Decode reads a whole resource into a buffer at SampleRate. ext picks the
// decoder; anything beep cannot decode goes through FFmpeg.
func Decode(rc io.ReadCloser, ext string) (*beep.Buffer, error) {
	defer rc.Close()

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch ext {
	case ".mp3":
		s, format, err = mp3.Decode(rc)
	case ".wav":
		s, format, err = wav.Decode(rc)
	case ".flac":
		s, format, err = flac.Decode(rc)
	case ".ogg":
		s, format, err = vorbis.Decode(rc)
	default:
		samples, err := decodeFFmpeg(rc)
		if err != nil {
			return nil, err
		}
		return buffer(&pcmStreamer{samples: samples}, Format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	defer s.Close()
	return buffer(s, format)
}

func buffer(s beep.Streamer, format beep.Format) (*beep.Buffer, error) {
	var src beep.Streamer = s
	if format.SampleRate != SampleRate {
		src = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	buf := beep.NewBuffer(Format)
	buf.Append(src)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyTrack
	}
	return buf, nil
}

// decodeFFmpeg runs FFmpeg to decode audio from r to raw PCM int16 samples.
// Returns interleaved stereo samples at 48kHz.
func decodeFFmpeg(r io.Reader) ([]int16, error) {
	cmd := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", "48000",
		"-ac", "2",
		"-loglevel", "error",
		"pipe:1",
	)
	cmd.Stdin = r

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	// Ensure even byte count for int16 alignment
	if len(out)%2 != 0 {
		out = out[:len(out)-1]
	}

	samples := make([]int16, len(out)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(out[i*2 : i*2+2]))
	}

	return samples, nil
}

// pcmStreamer streams interleaved stereo int16 samples.
type pcmStreamer struct {
	samples []int16
	pos     int
}

func (p *pcmStreamer) Stream(out [][2]float64) (int, bool) {
	n := 0
	for n < len(out) && p.pos+1 < len(p.samples) {
		out[n][0] = float64(p.samples[p.pos]) / 32768
		out[n][1] = float64(p.samples[p.pos+1]) / 32768
		p.pos += 2
		n++
	}
	return n, n > 0
}

func (p *pcmStreamer) Err() error { return nil }

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// ToInt16 converts a float sample in [-1, 1] to int16, clipping out-of-range values.
func ToInt16(v float64) int16 {
	scaled := v * 32767
	if scaled > 32767 {
		return 32767
	} else if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}
