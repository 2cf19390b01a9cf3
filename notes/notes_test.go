package notes

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// 960 ticks per quarter at 120 bpm is 0.5s per quarter
const quarter = 960

type step struct {
	delta uint32
	msg   midi.Message
}

func build(t *testing.T, tracks ...[]step) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(quarter)
	for i, steps := range tracks {
		var tr smf.Track
		if i == 0 {
			tr.Add(0, smf.MetaTempo(120))
		}
		for _, st := range steps {
			tr.Add(st.delta, st.msg)
		}
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}

	// round trip so the file looks like one read from disk
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	res, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	return res
}

func on(delta uint32, key, vel uint8) step {
	return step{delta, midi.NoteOn(0, key, vel)}
}

func off(delta uint32, key uint8) step {
	return step{delta, midi.NoteOff(0, key)}
}

func TestExtractMelody(t *testing.T) {
	s := build(t, []step{
		on(0, 60, 100), off(quarter, 60),
		on(0, 62, 80), off(quarter, 62),
		on(0, 64, 60), off(2*quarter, 64),
	})

	seq, err := Extract(s, Options{Policy: WeightByDuration})
	require.NoError(t, err)
	assert.Equal(t, model.NoteSequence{
		{Onset: 0, Pitch: 60, Duration: 0.5, Weight: 0.5},
		{Onset: 0.5, Pitch: 62, Duration: 0.5, Weight: 0.5},
		{Onset: 1, Pitch: 64, Duration: 1, Weight: 1},
	}, seq)
}

func TestWeightPolicies(t *testing.T) {
	s := build(t, []step{on(0, 60, 127), off(quarter, 60)})

	seq, err := Extract(s, Options{Policy: WeightByVelocity})
	require.NoError(t, err)
	assert.Equal(t, 1.0, seq[0].Weight)

	seq, err = Extract(s, Options{Policy: WeightUniform})
	require.NoError(t, err)
	assert.Equal(t, 1.0, seq[0].Weight)
	assert.Equal(t, 0.5, seq[0].Duration)
}

func TestZeroVelocityEndsNote(t *testing.T) {
	s := build(t, []step{on(0, 67, 90), on(quarter, 67, 0)})
	seq, err := Extract(s, Options{})
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, 0.5, seq[0].Duration)
}

func TestSkylineKeepsTopVoice(t *testing.T) {
	// a C major chord followed by a melody note that overlaps its release
	s := build(t, []step{
		on(0, 60, 90), on(0, 64, 90), on(0, 67, 90),
		on(quarter, 72, 90),
		off(quarter, 60), off(0, 64), off(0, 67),
		off(quarter, 72),
	})
	seq, err := Extract(s, Options{Policy: WeightUniform})
	require.NoError(t, err)
	require.Len(t, seq, 2)
	assert.Equal(t, 67.0, seq[0].Pitch)
	assert.Equal(t, 0.5, seq[0].Duration)
	assert.Equal(t, 72.0, seq[1].Pitch)
	assert.Equal(t, 0.5, seq[1].Onset)
	assert.Equal(t, 1.0, seq[1].Duration)
}

func TestDrumsAreSkipped(t *testing.T) {
	s := build(t,
		[]step{{0, midi.NoteOn(9, 36, 100)}, {quarter, midi.NoteOff(9, 36)}},
		[]step{on(0, 62, 90), off(quarter, 62)},
	)
	seq, err := Extract(s, Options{})
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, 62.0, seq[0].Pitch)

	seq, err = Extract(s, Options{IncludeDrums: true})
	require.NoError(t, err)
	assert.Len(t, seq, 1)
	assert.Equal(t, 62.0, seq[0].Pitch)

	all := Notes(s, Options{IncludeDrums: true})
	assert.Len(t, all, 2)
}

func TestEmptyFile(t *testing.T) {
	s := build(t, []step{})
	_, err := Extract(s, Options{})
	assert.True(t, errors.Is(err, model.ErrEmptySequence))
}

func TestUnterminatedNoteClosesAtLastEvent(t *testing.T) {
	s := build(t, []step{on(0, 60, 90), on(quarter, 62, 90), off(quarter, 62)})
	all := Notes(s, Options{})
	require.Len(t, all, 2)
	assert.Equal(t, 60, int(all[0].Key))
	assert.Equal(t, 1.0, all[0].End)
}
