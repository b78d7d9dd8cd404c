package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Kind is the transport a listener receives the mix over.
type Kind string

const (
	KindHTTP   Kind = "http"
	KindWebRTC Kind = "webrtc"
)

// listenerBuffer holds ~3 seconds of 20ms frames.
const listenerBuffer = 150

// Broadcaster fans out mix frames from the pipeline to every connected listener.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives mix frames from the broadcaster.
type Listener struct {
	ID   string
	Kind Kind
	C    chan []int16
	done chan struct{}
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener of the given kind.
func (b *Broadcaster) Subscribe(kind Kind) *Listener {
	l := &Listener{
		ID:   uuid.NewString(),
		Kind: kind,
		C:    make(chan []int16, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and closes its Done channel. Safe to call twice.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[l]; !ok {
		return
	}
	delete(b.listeners, l)
	close(l.done)
}

// Done is closed once the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// ListenerCount returns the number of active listeners of every kind.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Count returns the number of active listeners of one kind.
func (b *Broadcaster) Count(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for l := range b.listeners {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// Run fans every frame from source out to the listeners until ctx is done
// or source closes. A listener whose buffer is full misses the frame.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.fanOut(frame)
		}
	}
}

func (b *Broadcaster) fanOut(frame []int16) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- frame:
		default:
		}
	}
}
