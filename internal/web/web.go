// Package web serves the browser page and the JSON control API.
package web

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/satindergrewal/soundscape/internal/catalog"
	"github.com/satindergrewal/soundscape/internal/console"
)

//go:embed index.html
var IndexHTML []byte

// Stream endpoints the page attaches to. Mounted by the caller.
const (
	StreamPath = "/stream"
	OfferPath  = "/offer"
)

// ListenerCounter reports connected stream listeners.
type ListenerCounter interface {
	HTTPListeners() int
	WebRTCPeers() int
}

// API exposes the console over HTTP.
type API struct {
	console   *console.Console
	catalog   *catalog.Catalog
	listeners ListenerCounter
	log       zerolog.Logger
}

// NewAPI creates the API. listeners may be nil.
func NewAPI(c *console.Console, cat *catalog.Catalog, listeners ListenerCounter, logger zerolog.Logger) *API {
	return &API{console: c, catalog: cat, listeners: listeners, log: logger}
}

// Register mounts the page and API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", a.handleIndex)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/presets", a.handlePresets)
	mux.HandleFunc("/api/start", a.handleStart)
	mux.HandleFunc("/api/volume", a.handleVolume)
	mux.HandleFunc("/api/preset", a.handlePreset)
}

type statusResponse struct {
	console.Status
	Stream          string `json:"stream"`
	Offer           string `json:"offer"`
	HTTPListeners   int    `json:"http_listeners"`
	WebRTCListeners int    `json:"webrtc_listeners"`
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(IndexHTML)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status: a.console.Status(),
		Stream: StreamPath,
		Offer:  OfferPath,
	}
	if a.listeners != nil {
		resp.HTTPListeners = a.listeners.HTTPListeners()
		resp.WebRTCListeners = a.listeners.WebRTCPeers()
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog.Presets())
}

func (a *API) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	err := a.console.Start(r.Context())
	switch {
	case errors.Is(err, console.ErrAlreadyRunning):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": console.Running})
}

func (a *API) handleVolume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Track string   `json:"track"`
		Value *float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Track == "" || req.Value == nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := a.console.SetVolume(req.Track, *req.Value); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "track": req.Track, "value": *req.Value})
}

func (a *API) handlePreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Preset string `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Preset == "" {
		http.Error(w, "invalid preset", http.StatusBadRequest)
		return
	}
	if err := a.console.ApplyPreset(req.Preset); err != nil {
		if errors.Is(err, catalog.ErrUnknownPreset) {
			http.Error(w, "unknown preset", http.StatusBadRequest)
			return
		}
		a.log.Error().Err(err).Str("preset", req.Preset).Msg("apply preset")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "preset": req.Preset})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
