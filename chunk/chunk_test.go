package chunk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tune(t *testing.T, n int) model.NormalizedSequence {
	var events []model.PitchEvent
	for i := 0; i < n; i++ {
		events = append(events, model.PitchEvent{Onset: float64(i) * 0.5, Pitch: float64(55 + (i*7)%17), Duration: 0.5, Weight: 1})
	}
	seq, err := model.NewNoteSequence(events)
	require.NoError(t, err)
	res, err := normalize.Normalize(seq, normalize.Options{})
	require.NoError(t, err)
	return res
}

func offsets(chunks []model.Chunk) []int {
	var res []int
	for _, c := range chunks {
		res = append(res, c.Offset)
	}
	return res
}

func TestFortyNotesWindowSixteenHopEight(t *testing.T) {
	chunks, err := Chunk(tune(t, 40), Config{WindowSize: 16, HopSize: 8, MinChunkNotes: 8})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]int{0, 8, 16, 24}, offsets(chunks))
	for i, c := range chunks {
		assert.Equal(i, c.Index)
		assert.Equal(16, c.Sequence.Len())
		assert.False(c.Partial)
		assert.Equal(float64(c.Offset)*0.5, c.Onset)
	}
}

func TestFullChunkCount(t *testing.T) {
	cfg := Config{WindowSize: 10, HopSize: 3, MinChunkNotes: 10}
	for n := 10; n < 60; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			chunks, err := Chunk(tune(t, n), cfg)
			require.NoError(t, err)
			assert.Len(t, chunks, (n-10)/3+1)
		})
	}
}

func TestPartialTail(t *testing.T) {
	// full windows at 0 and 8 cover 24 of 30 notes; the tail from 16 has 14
	chunks, err := Chunk(tune(t, 30), Config{WindowSize: 16, HopSize: 8, MinChunkNotes: 12})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	tail := chunks[2]
	assert.True(t, tail.Partial)
	assert.Equal(t, 16, tail.Offset)
	assert.Equal(t, 14, tail.Sequence.Len())
}

func TestShortTailIsDropped(t *testing.T) {
	chunks, err := Chunk(tune(t, 30), Config{WindowSize: 16, HopSize: 8, MinChunkNotes: 15})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 8}, offsets(chunks))
}

func TestChunksAreRecentered(t *testing.T) {
	seq := tune(t, 40)
	chunks, err := Chunk(seq, DefaultConfig())
	require.NoError(t, err)

	for _, c := range chunks {
		assert.InDelta(t, 0, normalize.Median(c.Sequence.Pitches()), 1e-9)
		for i, e := range c.Sequence.Events {
			assert.InDelta(t, seq.Events[c.Offset+i].Pitch+seq.Median, e.Pitch+c.Sequence.Median, 1e-9)
		}
	}
}

func TestChunksDoNotShareMemory(t *testing.T) {
	seq := tune(t, 20)
	chunks, err := Chunk(seq, Config{WindowSize: 10, HopSize: 5, MinChunkNotes: 5})
	require.NoError(t, err)

	before := seq.Events[5].Pitch
	chunks[0].Sequence.Events[5].Pitch = 1000
	assert.Equal(t, before, seq.Events[5].Pitch)
	assert.NotEqual(t, 1000.0, chunks[1].Sequence.Events[0].Pitch)
}

func TestTooShort(t *testing.T) {
	_, err := Chunk(tune(t, 15), DefaultConfig())
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestInvalidConfig(t *testing.T) {
	cases := []Config{
		{WindowSize: 0, HopSize: 1, MinChunkNotes: 1},
		{WindowSize: 8, HopSize: 8, MinChunkNotes: 4},
		{WindowSize: 8, HopSize: 0, MinChunkNotes: 4},
		{WindowSize: 8, HopSize: 4, MinChunkNotes: 0},
		{WindowSize: 8, HopSize: 4, MinChunkNotes: 9},
	}
	for _, cfg := range cases {
		_, err := Chunk(tune(t, 40), cfg)
		assert.True(t, errors.Is(err, model.ErrInvalidConfig), "%+v", cfg)
	}
}
