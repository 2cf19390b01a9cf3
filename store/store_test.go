package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library(t *testing.T) *reference.Library {
	var inputs []reference.Input
	for i, n := range []int{40, 30, 16} {
		var events []model.PitchEvent
		for j := 0; j < n; j++ {
			events = append(events, model.PitchEvent{
				Onset:    float64(j) * 0.37,
				Pitch:    60 + float64((j*(i+2))%11) + 0.5*float64(j%2),
				Duration: 0.37,
				Weight:   0.1 * float64(j%4),
			})
		}
		seq, err := model.NewNoteSequence(events)
		require.NoError(t, err)
		norm, err := normalize.Normalize(seq, normalize.Options{QuantizeStep: 0.5})
		require.NoError(t, err)
		in := reference.Input{ID: fmt.Sprintf("dir/tune-%d.mid", i), Title: fmt.Sprintf("Tune %d", i), Sequence: norm}
		if i == 0 {
			in.Artist = "Fairuz"
			in.Source = "/media/dir/tune-0.mid"
			in.Metadata = map[string]string{"year": "1965"}
		}
		inputs = append(inputs, in)
	}
	lib, err := reference.Prepare(inputs, chunk.Config{WindowSize: 16, HopSize: 8, MinChunkNotes: 12})
	require.NoError(t, err)
	return lib
}

func roundTrip(t *testing.T, s Store) {
	defer s.Close()

	_, err := s.Load()
	assert.True(t, errors.Is(err, ErrNotFound))

	lib := library(t)
	require.NoError(t, s.Save(SnapshotOf(lib)))

	loaded, err := LoadLibrary(s)
	require.NoError(t, err)
	assert.Equal(t, lib.Config(), loaded.Config())
	assert.Equal(t, lib.Entries(), loaded.Entries())
	assert.Equal(t, lib.Summary(), loaded.Summary())

	// saving again replaces the old library
	smaller, err := reference.FromEntries(lib.Config(), lib.Entries()[:1])
	require.NoError(t, err)
	require.NoError(t, s.Save(SnapshotOf(smaller)))
	loaded, err = LoadLibrary(s)
	require.NoError(t, err)
	assert.Len(t, loaded.Entries(), 1)
}

func TestFileStore(t *testing.T) {
	roundTrip(t, NewFileStore(t.TempDir()))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	roundTrip(t, s)
}

func TestEmptyMetadataLoadsAsNil(t *testing.T) {
	seq, err := model.NewNoteSequence([]model.PitchEvent{{Pitch: 60}, {Onset: 1, Pitch: 62}, {Onset: 2, Pitch: 64}})
	require.NoError(t, err)
	norm, err := normalize.Normalize(seq, normalize.Options{})
	require.NoError(t, err)
	cfg := chunk.Config{WindowSize: 3, HopSize: 1, MinChunkNotes: 3}
	lib, err := reference.Prepare([]reference.Input{{ID: "a.mid", Sequence: norm, Metadata: map[string]string{}}}, cfg)
	require.NoError(t, err)

	sqlite, err := NewSQLiteStore(t.TempDir())
	require.NoError(t, err)
	for _, s := range []Store{NewFileStore(t.TempDir()), sqlite} {
		require.NoError(t, s.Save(SnapshotOf(lib)))
		loaded, err := LoadLibrary(s)
		require.NoError(t, err)
		require.Len(t, loaded.Entries(), 1)
		assert.Nil(t, loaded.Entries()[0].Metadata)
		assert.Equal(t, SnapshotOf(lib).Entries, loaded.Entries())
		s.Close()
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("gob", dir)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open("sqlite", dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open("redis", dir)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
}
