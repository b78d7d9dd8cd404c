package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/soundscape/internal/catalog"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in presets",
	RunE:  runPresets,
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List the tracks and where they load from",
	RunE:  runTracks,
}

func init() {
	tracksCmd.Flags().StringVar(&cfg.Sounds, "sounds", cfg.Sounds, "directory or URL track locations resolve against")
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(tracksCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func runPresets(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	ids := cat.TrackIDs()
	t := newTable(append([]string{"#", "preset"}, ids...)...)
	for i, p := range cat.Presets() {
		row := []string{fmt.Sprint(i + 1), p.ID}
		for _, id := range ids {
			v, ok := p.Volumes[id]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		t.Row(row...)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func runTracks(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	fetcher := newFetcher()
	t := newTable("track", "label", "slider", "source")
	for _, tr := range cat.Tracks() {
		t.Row(tr.ID, tr.Label, catalog.SliderKey(tr.ID), fetcher.Resolve(tr.Location))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}
