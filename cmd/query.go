package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/melodex/engine"
	"github.com/jsphweid/melodex/maqam"
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/notes"
)

// readQuery loads events from a MIDI file or from JSON, either a bare list
// of events or a search request body.
func readQuery(path string) ([]model.PitchEvent, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dat, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var events []model.PitchEvent
		if err := json.Unmarshal(dat, &events); err == nil {
			return events, nil
		}
		var body model.SearchRequestBody
		if err := json.Unmarshal(dat, &body); err != nil {
			return nil, fmt.Errorf("could not parse %v: %w", path, err)
		}
		return body.Notes, nil
	}

	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	seq, err := notes.Extract(parsed, notes.Options{Policy: cfg.WeightPolicy})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func printFailure(r engine.Report) bool {
	if r.Failure == nil {
		return false
	}
	fmt.Printf("cannot analyze query (%v): %v\n", r.Failure.Kind, r.Failure.Message)
	return true
}

func printLowConfidence(results []model.MatchResult) {
	if len(results) > 0 && results[0].LowConfidence {
		fmt.Println("note: too few distinct pitches, treat these scores as low confidence")
	}
}

func printMaqamReport(r engine.Report, lib *maqam.Library) {
	if printFailure(r) {
		return
	}
	printLowConfidence(r.Results)
	for i, res := range r.Results {
		root := res.Transposition
		fmt.Printf("%2d. %-10s %.3f  on %-2s", i+1, res.CandidateID, res.Score, maqam.NoteName(root))
		if t, ok := lib.Get(res.CandidateID); ok {
			fmt.Printf("  %v", strings.Join(maqam.NoteNames(t, root), " "))
		}
		fmt.Println()
	}
}

func printTuneReport(r engine.Report) {
	if printFailure(r) {
		return
	}
	printLowConfidence(r.Results)
	for i, res := range r.Results {
		fmt.Printf("%2d. %-40s %.3f  cost %.3f  shift %+d", i+1, res.Title, res.Score, res.Cost, res.Transposition)
		if d := res.Detail; d != nil {
			fmt.Printf("  matched at note %d (%.2fs)", d.Offset, d.Onset)
		}
		fmt.Printf("  [%v]\n", res.CandidateID)
	}
}
