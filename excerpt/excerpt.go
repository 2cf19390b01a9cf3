package excerpt

import (
	"bytes"
	"errors"

	"github.com/jsphweid/melodex/model"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var eot = []byte{0xFF, 0x2F, 0x00}

var ErrEmptyWindow = errors.New("excerpt: window contains no events")

type sounding struct{ channel, key uint8 }

// Window is the time span, in seconds, a chunk covers in its source file.
func Window(c model.Chunk) (from, to float64) {
	events := c.Sequence.Events
	if len(events) == 0 {
		return c.Onset, c.Onset
	}
	from = events[0].Onset
	for _, e := range events {
		if end := e.Onset + e.Duration; end > to {
			to = end
		}
	}
	return from, to
}

func micros(seconds float64) int64 {
	return int64(seconds * 1e6)
}

func startTick(mf *smf.SMF, from int64) (int64, bool) {
	best := int64(-1)
	for _, track := range mf.Tracks {
		var absTicks int64
		for _, evt := range track {
			absTicks += int64(evt.Delta)
			if mf.TimeAt(absTicks) >= from {
				if best < 0 || absTicks < best {
					best = absTicks
				}
				break
			}
		}
	}
	return best, best >= 0
}

// Create cuts [from, to) seconds out of mf. Events before the window that
// are not notes (tempo, program changes) are kept at its start so the clip
// sounds the same. Notes still sounding at the end are released there.
func Create(mf *smf.SMF, from, to float64) (*smf.SMF, error) {
	fromUs, toUs := micros(from), micros(to)
	start, ok := startTick(mf, fromUs)
	if !ok || toUs <= fromUs {
		return nil, ErrEmptyWindow
	}

	res := smf.New()
	res.TimeFormat = mf.TimeFormat

	var numNotes int
	for _, track := range mf.Tracks {
		var newTrack smf.Track
		on := make(map[sounding]bool)
		var order []sounding
		var absTicks int64
		prev := start
		release := func(at int64) {
			delta := uint32(at - prev)
			for _, s := range order {
				if on[s] {
					newTrack.Add(delta, midi.NoteOff(s.channel, s.key))
					on[s] = false
					delta = 0
				}
			}
			prev = at
		}

	TrackEventLoop:
		for _, evt := range track {
			absTicks += int64(evt.Delta)
			if bytes.Equal(evt.Message, eot) {
				continue
			}
			t := mf.TimeAt(absTicks)
			if t >= toUs {
				release(absTicks)
				break TrackEventLoop
			}

			var channel, key, velocity uint8
			var isOn, isOff bool
			switch {
			case evt.Message.GetNoteOn(&channel, &key, &velocity):
				isOn = velocity > 0
				isOff = velocity == 0
			case evt.Message.GetNoteOff(&channel, &key, &velocity):
				isOff = true
			}

			if t < fromUs {
				if !isOn && !isOff {
					newTrack.Add(0, evt.Message)
				}
				continue
			}

			s := sounding{channel, key}
			switch {
			case isOn:
				if !on[s] {
					order = append(order, s)
				}
				on[s] = true
				numNotes++
			case isOff:
				if !on[s] {
					continue
				}
				on[s] = false
			}
			newTrack.Add(uint32(absTicks-prev), evt.Message)
			prev = absTicks
		}
		if absTicks > prev {
			release(absTicks)
		} else {
			release(prev)
		}
		newTrack.Close(0)
		if err := res.Add(newTrack); err != nil {
			return nil, err
		}
	}

	if numNotes == 0 {
		return nil, ErrEmptyWindow
	}
	return res, nil
}
