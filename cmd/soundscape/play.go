package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/console"
	"github.com/satindergrewal/soundscape/internal/logging"
	"github.com/satindergrewal/soundscape/internal/tui"
)

var playLogFile string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the mix on this machine's speakers with a terminal mixer",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&cfg.Sounds, "sounds", cfg.Sounds, "directory or URL track locations resolve against")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "write logs to this file (the terminal is owned by the mixer)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var out io.Writer = io.Discard
	if playLogFile != "" {
		f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	l, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	logger = l

	cat, mixer, err := newMixer()
	if err != nil {
		return err
	}

	spk := audio.NewSpeaker(mixer, cfg.SpeakerBuffer, logger)
	defer spk.Close()

	c := console.New(cat, mixer, spk, logger)
	_, err = tea.NewProgram(tui.New(ctx, c), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
