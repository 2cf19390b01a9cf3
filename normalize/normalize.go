package normalize

import (
	"math"
	"sort"

	"github.com/jsphweid/melodex/model"
	"gonum.org/v1/gonum/stat"
)

type Options struct {
	// 0 disables quantization, 0.5 is a quarter-tone grid
	QuantizeStep float64
}

// Median of the values, averaging the two middle values for an even count.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lower := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted)%2 == 1 {
		return lower
	}
	return (lower + sorted[len(sorted)/2]) / 2
}

func Quantize(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	q := math.Round(v/step) * step
	// avoid -0 leaking into keys and JSON
	if q == 0 {
		return 0
	}
	return q
}

// Normalize centers the sequence on its median pitch and optionally snaps
// the median and the centered pitches to a grid. Octaves are preserved; folding to pitch
// class is left to the matchers.
func Normalize(seq model.NoteSequence, opts Options) (model.NormalizedSequence, error) {
	if len(seq) == 0 {
		return model.NormalizedSequence{}, model.ErrEmptySequence
	}
	// an on-grid median keeps the intervals between on-grid pitches intact
	median := Quantize(Median(seq.Pitches()), opts.QuantizeStep)

	events := make([]model.PitchEvent, len(seq))
	for i, e := range seq {
		e.Pitch = Quantize(e.Pitch-median, opts.QuantizeStep)
		events[i] = e
	}
	return model.NormalizedSequence{
		Events:       events,
		Median:       median,
		QuantizeStep: opts.QuantizeStep,
	}, nil
}

// Recenter re-anchors an already normalized window on its own median.
func Recenter(events []model.PitchEvent, anchor, step float64) model.NormalizedSequence {
	pitches := make([]float64, len(events))
	for i, e := range events {
		pitches[i] = e.Pitch
	}
	// snapping the median keeps on-grid pitches on the grid
	median := Quantize(Median(pitches), step)

	res := make([]model.PitchEvent, len(events))
	for i, e := range events {
		e.Pitch = e.Pitch - median
		if e.Pitch == 0 {
			e.Pitch = 0
		}
		res[i] = e
	}
	return model.NormalizedSequence{
		Events:       res,
		Median:       anchor + median,
		QuantizeStep: step,
	}
}

// Shift returns a copy transposed by s semitones. Centered pitches are
// unchanged, only the anchor moves, so absolute pitches read through
// Median all rise by s.
func Shift(n model.NormalizedSequence, s float64) model.NormalizedSequence {
	events := make([]model.PitchEvent, len(n.Events))
	copy(events, n.Events)
	return model.NormalizedSequence{
		Events:       events,
		Median:       n.Median + s,
		QuantizeStep: n.QuantizeStep,
	}
}

// PitchClass folds v into [0,12).
func PitchClass(v float64) float64 {
	pc := math.Mod(v, 12)
	if pc < 0 {
		pc += 12
	}
	if pc >= 12 {
		pc = 0
	}
	return pc
}
