package model

import "fmt"

type PitchEvent struct {
	Onset    float64 `json:"onset"`
	Pitch    float64 `json:"pitch"`
	Duration float64 `json:"duration"`

	// NOTE: upstream decides what weight means (duration, velocity, count)
	Weight float64 `json:"weight"`
}

// NoteSequence is an ordered, non-empty melodic line. Build it with
// NewNoteSequence; methods never modify the receiver.
type NoteSequence []PitchEvent

func NewNoteSequence(events []PitchEvent) (NoteSequence, error) {
	if len(events) == 0 {
		return nil, ErrEmptySequence
	}
	for i, e := range events {
		if e.Weight < 0 || e.Duration < 0 {
			return nil, fmt.Errorf("%w: event %d has negative weight or duration", ErrInvalidEvent, i)
		}
		if i > 0 && e.Onset < events[i-1].Onset {
			return nil, fmt.Errorf("%w: event %d starts at %v, before %v", ErrUnorderedOnsets, i, e.Onset, events[i-1].Onset)
		}
	}
	res := make(NoteSequence, len(events))
	copy(res, events)
	return res, nil
}

func (s NoteSequence) Pitches() []float64 {
	res := make([]float64, len(s))
	for i, e := range s {
		res[i] = e.Pitch
	}
	return res
}

func (s NoteSequence) Slice(from, to int) NoteSequence {
	res := make(NoteSequence, to-from)
	copy(res, s[from:to])
	return res
}

// NormalizedSequence holds centered pitches. Median is the value that was
// subtracted, so Events[i].Pitch+Median gives back the absolute pitch.
type NormalizedSequence struct {
	Events       []PitchEvent `json:"events"`
	Median       float64      `json:"median"`
	QuantizeStep float64      `json:"quantize_step,omitempty"`
}

func (n NormalizedSequence) Len() int {
	return len(n.Events)
}

func (n NormalizedSequence) Pitches() []float64 {
	res := make([]float64, len(n.Events))
	for i, e := range n.Events {
		res[i] = e.Pitch
	}
	return res
}

func (n NormalizedSequence) Durations() []float64 {
	res := make([]float64, len(n.Events))
	for i, e := range n.Events {
		res[i] = e.Duration
	}
	return res
}

// DistinctPitches counts distinct centered pitch values.
func (n NormalizedSequence) DistinctPitches() int {
	seen := make(map[float64]bool)
	for _, e := range n.Events {
		seen[e.Pitch] = true
	}
	return len(seen)
}
