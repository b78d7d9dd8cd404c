package stream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"
	"gopkg.in/hraban/opus.v2"

	"github.com/satindergrewal/soundscape/internal/audio"
)

// WebRTCHandler serves WebRTC SDP negotiation for low-latency Opus streaming.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	bitrate     int
	log         zerolog.Logger

	mu    sync.Mutex
	peers map[string]*peer
}

type peer struct {
	pc       *webrtc.PeerConnection
	listener *Listener
}

// NewWebRTCHandler creates a WebRTC stream handler. bitrate is the Opus
// encoder target in bits per second.
func NewWebRTCHandler(b *Broadcaster, bitrate int, logger zerolog.Logger) *WebRTCHandler {
	return &WebRTCHandler{
		broadcaster: b,
		bitrate:     bitrate,
		log:         logger,
		peers:       make(map[string]*peer),
	}
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil || offer.SDP == "" {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"soundscape",
	)
	if err != nil {
		pc.Close()
		http.Error(w, "create audio track failed", http.StatusInternalServerError)
		return
	}

	if _, err := pc.AddTrack(audioTrack); err != nil {
		pc.Close()
		http.Error(w, "add track failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}

	// Wait for ICE gathering to complete
	<-webrtc.GatheringCompletePromise(pc)

	id := uuid.NewString()
	listener := h.broadcaster.Subscribe(KindWebRTC)
	h.mu.Lock()
	h.peers[id] = &peer{pc: pc, listener: listener}
	h.mu.Unlock()

	log := h.log.With().Str("peer", id).Logger()
	log.Info().Int("total", h.PeerCount()).Msg("webrtc peer connected")

	go h.streamToPeer(log, listener, audioTrack)

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed ||
			s == webrtc.PeerConnectionStateDisconnected {
			if p := h.removePeer(id); p != nil {
				h.broadcaster.Unsubscribe(p.listener)
				p.pc.Close()
				log.Info().Int("remaining", h.PeerCount()).Msg("webrtc peer disconnected")
			}
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(pc.LocalDescription())
}

func (h *WebRTCHandler) streamToPeer(log zerolog.Logger, listener *Listener, track *webrtc.TrackLocalStaticSample) {
	defer h.broadcaster.Unsubscribe(listener)

	enc, err := opus.NewEncoder(audio.SampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		log.Error().Err(err).Msg("webrtc: opus encoder")
		return
	}
	if err := enc.SetBitrate(h.bitrate); err != nil {
		log.Warn().Err(err).Int("bitrate", h.bitrate).Msg("webrtc: opus bitrate rejected")
	}

	opusBuf := make([]byte, 4000)

	for {
		select {
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			n, err := enc.Encode(frame, opusBuf)
			if err != nil {
				log.Warn().Err(err).Msg("webrtc: opus encode")
				continue
			}
			if err := track.WriteSample(media.Sample{
				Data:     opusBuf[:n],
				Duration: audio.FrameDuration,
			}); err != nil {
				return
			}
		}
	}
}

func (h *WebRTCHandler) removePeer(id string) *peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.peers[id]
	delete(h.peers, id)
	return p
}

// Close tears down every peer connection.
func (h *WebRTCHandler) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[string]*peer)
	h.mu.Unlock()
	for _, p := range peers {
		h.broadcaster.Unsubscribe(p.listener)
		p.pc.Close()
	}
}
