package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/catalog"
	"github.com/satindergrewal/soundscape/internal/config"
	"github.com/satindergrewal/soundscape/internal/logging"
)

var (
	cfg    = config.Load()
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "soundscape",
	Short:         "Ambient soundscape mixer",
	Long:          `Mix looping ambient tracks (rain, ocean, fire, birds, thunder) with per-track volume and presets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")
}

func newFetcher() *audio.Fetcher {
	return audio.NewFetcher(cfg.Sounds, cfg.FetchTimeout)
}

// newMixer builds the catalog and a mixer that loads tracks from cfg.Sounds.
func newMixer() (*catalog.Catalog, *audio.Mixer, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, nil, err
	}
	mixer := audio.NewMixer(cat, newFetcher(), logger)
	mixer.SetMaster(cfg.MasterGain)
	return cat, mixer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "soundscape:", err)
		os.Exit(1)
	}
}
