package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
)

// ErrPipelineStopped is returned by Resume once Run has returned.
var ErrPipelineStopped = errors.New("pipeline is not running")

// Pipeline renders a streamer into PCM frames at real-time rate. It starts
// suspended and produces nothing until Resume is called.
type Pipeline struct {
	src     beep.Streamer
	log     zerolog.Logger
	frameCh chan []int16

	resumeCh   chan struct{}
	resumeOnce sync.Once
	done       chan struct{}

	mu       sync.RWMutex
	resumed  bool
	rendered time.Duration
}

// NewPipeline creates a suspended pipeline that renders src.
func NewPipeline(src beep.Streamer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		src:      src,
		log:      logger,
		frameCh:  make(chan []int16, 100),
		resumeCh: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Pipeline) Frames() <-chan []int16 {
	return p.frameCh
}

// Resume lets Run start rendering. Calling it again is a no-op.
func (p *Pipeline) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrPipelineStopped
	default:
	}
	p.resumeOnce.Do(func() { close(p.resumeCh) })
	return nil
}

// Status returns whether rendering has started and how much audio was rendered.
func (p *Pipeline) Status() (resumed bool, rendered time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resumed, p.rendered
}

// Run renders frames until ctx is cancelled. It must be called once.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.frameCh)
	defer close(p.done)

	select {
	case <-ctx.Done():
		return
	case <-p.resumeCh:
	}

	p.mu.Lock()
	p.resumed = true
	p.mu.Unlock()
	p.log.Info().Msg("audio output resumed")

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	buf := make([][2]float64, FrameSize)
	for {
		if !p.sendFrame(ctx, ticker, p.render(buf)) {
			return
		}
		p.mu.Lock()
		p.rendered += FrameDuration
		p.mu.Unlock()
	}
}

// render pulls one frame from the source and interleaves it as int16.
func (p *Pipeline) render(buf [][2]float64) []int16 {
	n, ok := p.src.Stream(buf)
	if !ok {
		n = 0
	}
	frame := make([]int16, FrameSamples)
	for i := 0; i < n; i++ {
		frame[i*2] = ToInt16(buf[i][0])
		frame[i*2+1] = ToInt16(buf[i][1])
	}
	return frame
}

// sendFrame waits for the ticker then sends a frame. Returns false on cancel.
func (p *Pipeline) sendFrame(ctx context.Context, ticker *time.Ticker, frame []int16) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.C:
	}

	select {
	case p.frameCh <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}
