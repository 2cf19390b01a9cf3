package notes

import (
	"fmt"
	"sort"

	"github.com/jsphweid/melodex/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

type WeightPolicy string

const (
	WeightByDuration WeightPolicy = "duration"
	WeightByVelocity WeightPolicy = "velocity"
	WeightUniform    WeightPolicy = "uniform"
)

const drumChannel = 9

type Options struct {
	Policy       WeightPolicy
	IncludeDrums bool
}

type reducedEvent struct {
	// microseconds
	offset    int64
	isNoteOff bool
	channel   uint8
	key       uint8
	velocity  uint8
}

// Note is a sounding note with times in seconds.
type Note struct {
	Start    float64
	End      float64
	Key      uint8
	Velocity uint8
}

func reduce(s *smf.SMF, opts Options) []reducedEvent {
	var res []reducedEvent
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				res = append(res, reducedEvent{
					offset:    s.TimeAt(absTicks),
					isNoteOff: velocity == 0,
					channel:   channel,
					key:       key,
					velocity:  velocity,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				res = append(res, reducedEvent{
					offset:    s.TimeAt(absTicks),
					isNoteOff: true,
					channel:   channel,
					key:       key,
				})
			default:
				continue
			}
			if !opts.IncludeDrums && channel == drumChannel {
				res = res[:len(res)-1]
			}
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].offset != res[j].offset {
			return res[i].offset < res[j].offset
		}
		return res[i].isNoteOff && !res[j].isNoteOff
	})
	return res
}

// Notes pairs note on and off messages across all tracks. A note still
// sounding at the end of the file is closed at the last event.
func Notes(s *smf.SMF, opts Options) []Note {
	events := reduce(s, opts)

	type pressKey struct{ channel, key uint8 }
	pressed := make(map[pressKey][]reducedEvent)
	var res []Note
	var last int64
	for _, evt := range events {
		last = evt.offset
		k := pressKey{evt.channel, evt.key}
		if !evt.isNoteOff {
			pressed[k] = append(pressed[k], evt)
			continue
		}
		stack := pressed[k]
		if len(stack) == 0 {
			continue
		}
		on := stack[0]
		pressed[k] = stack[1:]
		res = append(res, Note{
			Start:    float64(on.offset) / 1e6,
			End:      float64(evt.offset) / 1e6,
			Key:      on.key,
			Velocity: on.velocity,
		})
	}
	for _, stack := range pressed {
		for _, on := range stack {
			res = append(res, Note{
				Start:    float64(on.offset) / 1e6,
				End:      float64(last) / 1e6,
				Key:      on.key,
				Velocity: on.velocity,
			})
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Start != res[j].Start {
			return res[i].Start < res[j].Start
		}
		return res[i].Key > res[j].Key
	})
	return res
}

// Skyline reduces overlapping notes to a single line: of notes starting
// together the highest wins, and a new note cuts the previous one short.
func Skyline(all []Note) []Note {
	var res []Note
	for _, n := range all {
		if len(res) > 0 {
			prev := &res[len(res)-1]
			if n.Start == prev.Start {
				// sorted highest first
				continue
			}
			if prev.End > n.Start {
				prev.End = n.Start
			}
		}
		res = append(res, n)
	}
	return res
}

func weight(n Note, policy WeightPolicy) float64 {
	switch policy {
	case WeightByVelocity:
		return float64(n.Velocity) / 127
	case WeightUniform:
		return 1
	default:
		return n.End - n.Start
	}
}

// Extract turns a MIDI file into a melodic line.
func Extract(s *smf.SMF, opts Options) (model.NoteSequence, error) {
	line := Skyline(Notes(s, opts))
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: no notes in midi file", model.ErrEmptySequence)
	}
	events := make([]model.PitchEvent, len(line))
	for i, n := range line {
		events[i] = model.PitchEvent{
			Onset:    n.Start,
			Pitch:    float64(n.Key),
			Duration: n.End - n.Start,
			Weight:   weight(n, opts.Policy),
		}
	}
	return model.NewNoteSequence(events)
}
