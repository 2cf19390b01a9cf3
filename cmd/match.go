package cmd

import (
	"context"
	"fmt"

	"github.com/jsphweid/melodex/excerpt"
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/reference"
	"github.com/spf13/cobra"
)

var (
	matchTop       int
	matchAllShifts bool
	matchClip      string
	matchFold      bool
	matchMaxChunks int
)

func init() {
	matchCmd.Flags().IntVar(&matchTop, "top", 10, "number of tunes to show, 0 for all")
	matchCmd.Flags().BoolVar(&matchAllShifts, "all-shifts", false, "try all 12 transpositions instead of -1..+1")
	matchCmd.Flags().BoolVar(&matchFold, "fold", false, "compare by pitch class, ignoring octave jumps (FOLD_PITCH_CLASS)")
	matchCmd.Flags().IntVar(&matchMaxChunks, "max-chunks", 0, "score at most this many chunks, 0 for all (MAX_CHUNKS)")
	matchCmd.Flags().StringVar(&matchClip, "clip", "", "write the matched region of the best tune to this MIDI file")
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match FILE",
	Short: "Finds the known tunes a melody resembles",
	Long:  `Finds the known tunes a melody resembles. FILE is a MIDI file or a JSON list of events.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("fold") {
			cfg.FoldPitchClass = matchFold
		}
		if cmd.Flags().Changed("max-chunks") {
			cfg.MaxChunks = matchMaxChunks
		}
		events, err := readQuery(args[0])
		if err != nil {
			return err
		}
		lib, err := loadLibrary()
		if err != nil {
			return fmt.Errorf("could not load library from %v, run index first: %w", cfg.IndexDir, err)
		}
		report, err := newEngine(nil, lib, matchAllShifts).Tune(context.Background(), events, matchTop)
		if err != nil {
			return err
		}
		printTuneReport(report)

		if matchClip != "" && report.Failure == nil && len(report.Results) > 0 {
			if err := writeClip(lib, report.Results[0], matchClip); err != nil {
				return err
			}
			fmt.Printf("Wrote matched excerpt to %v\n", matchClip)
		}
		return nil
	},
}

func writeClip(lib *reference.Library, best model.MatchResult, out string) error {
	entry, ok := lib.Entry(best.CandidateID)
	if !ok || best.Detail == nil {
		return fmt.Errorf("no alignment for %v", best.CandidateID)
	}
	if best.Detail.ChunkIndex >= len(entry.Chunks) {
		return fmt.Errorf("%v has no chunk %d", entry.ID, best.Detail.ChunkIndex)
	}
	parsed, err := midi.ReadMidiFile(entry.Source)
	if err != nil {
		return err
	}
	from, to := excerpt.Window(entry.Chunks[best.Detail.ChunkIndex])
	clip, err := excerpt.Create(parsed, from, to)
	if err != nil {
		return err
	}
	return midi.WriteMidiFile(out, clip)
}
