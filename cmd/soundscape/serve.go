package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/console"
	"github.com/satindergrewal/soundscape/internal/stream"
	"github.com/satindergrewal/soundscape/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mixer page and stream the mix to browsers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	serveCmd.Flags().StringVar(&cfg.Sounds, "sounds", cfg.Sounds, "directory or URL track locations resolve against")
	rootCmd.AddCommand(serveCmd)
}

// listenerCounts reports broadcaster subscribers by transport.
type listenerCounts struct {
	broadcaster *stream.Broadcaster
}

func (l listenerCounts) HTTPListeners() int {
	return l.broadcaster.Count(stream.KindHTTP)
}

func (l listenerCounts) WebRTCPeers() int {
	return l.broadcaster.Count(stream.KindWebRTC)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat, mixer, err := newMixer()
	if err != nil {
		return err
	}

	// Audio pipeline: renders the mix once a listener starts the console
	pipeline := audio.NewPipeline(mixer, logger)
	go pipeline.Run(ctx)

	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, pipeline.Frames())

	webrtcHandler := stream.NewWebRTCHandler(broadcaster, cfg.OpusBitrate, logger)
	defer webrtcHandler.Close()

	c := console.New(cat, mixer, pipeline, logger)

	mux := http.NewServeMux()
	web.NewAPI(c, cat, listenerCounts{broadcaster}, logger).Register(mux)
	mux.Handle(web.StreamPath, stream.NewHTTPHandler(broadcaster, cfg.MP3Bitrate, logger))
	mux.Handle(web.OfferPath, webrtcHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	logger.Info().
		Str("addr", addr).
		Str("sounds", cfg.Sounds).
		Float64("master_gain", cfg.MasterGain).
		Msg("soundscape live")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
