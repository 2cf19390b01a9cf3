package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/logging"
	"github.com/jsphweid/melodex/maqam"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func events(pitches ...float64) []model.PitchEvent {
	var res []model.PitchEvent
	for i, p := range pitches {
		res = append(res, model.PitchEvent{Onset: float64(i), Pitch: p, Duration: 1, Weight: 1})
	}
	return res
}

func tune(n, seed int) []model.PitchEvent {
	var pitches []float64
	for i := 0; i < n; i++ {
		pitches = append(pitches, float64(55+(i*seed+i*i)%19))
	}
	return events(pitches...)
}

func newEngine(t *testing.T, buf *bytes.Buffer) *Engine {
	var inputs []reference.Input
	for i := 1; i <= 3; i++ {
		seq, err := model.NewNoteSequence(tune(40, i*3))
		require.NoError(t, err)
		norm, err := normalize.Normalize(seq, normalize.Options{})
		require.NoError(t, err)
		id := fmt.Sprintf("tune-%d", i)
		inputs = append(inputs, reference.Input{ID: id, Title: id, Sequence: norm})
	}
	lib, err := reference.Prepare(inputs, chunk.DefaultConfig())
	require.NoError(t, err)
	return New(Options{
		Patterns:  maqam.Default(),
		Reference: lib,
		Logger:    logging.New(buf, slog.LevelDebug),
	})
}

func TestMaqam(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, &buf)

	report, err := e.Maqam(context.Background(), events(60, 62, 64, 65, 67, 69, 71), 3)
	require.NoError(t, err)
	assert.Equal(t, ModeMaqam, report.Mode)
	assert.NotEqual(t, uuid.Nil, report.QueryID)
	assert.Nil(t, report.Failure)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "ajam", report.Results[0].CandidateID)
	assert.Equal(t, 1.0, report.Results[0].Score)
	assert.Equal(t, 0, report.Results[0].Transposition)
}

func TestTuneFindsItsSource(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, &buf)

	query := tune(40, 6)[8:24]
	report, err := e.Tune(context.Background(), query, 0)
	require.NoError(t, err)
	require.Nil(t, report.Failure)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "tune-2", report.Results[0].CandidateID)
	assert.Equal(t, 8, report.Results[0].Detail.Offset)
	assert.InDelta(t, 1.0, report.Results[0].Score, 1e-9)
}

func TestSingleNote(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, &buf)

	report, err := e.Tune(context.Background(), events(62), 0)
	require.NoError(t, err)
	require.NotNil(t, report.Failure)
	assert.Equal(t, QueryTooShort, report.Failure.Kind)
	assert.Empty(t, report.Results)
	assert.Contains(t, buf.String(), "query_too_short")

	report, err = e.Maqam(context.Background(), events(62), 0)
	require.NoError(t, err)
	assert.Nil(t, report.Failure)
	require.Len(t, report.Results, maqam.Default().Len())
	for _, r := range report.Results {
		assert.True(t, r.LowConfidence)
	}
}

func TestFailures(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, &buf)

	cases := map[FailureKind][]model.PitchEvent{
		EmptySequence: nil,
		InvalidEvent:  {{Onset: 1, Pitch: 60}, {Onset: 0, Pitch: 62}},
	}
	for kind, evts := range cases {
		for _, mode := range []Mode{ModeMaqam, ModeTune} {
			report, err := e.Run(context.Background(), mode, evts, 0)
			require.NoError(t, err)
			require.NotNil(t, report.Failure, "%s %s", mode, kind)
			assert.Equal(t, kind, report.Failure.Kind)
		}
	}
}

func TestUnpreparedLibraryIsAnError(t *testing.T) {
	e := New(Options{Patterns: maqam.Default(), Logger: logging.New(&bytes.Buffer{}, slog.LevelInfo)})
	_, err := e.Tune(context.Background(), events(60, 62, 64), 0)
	assert.True(t, errors.Is(err, model.ErrLibraryNotPrepared))
}

func TestBatchKeepsGoing(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(t, &buf)

	reports, err := e.Batch(context.Background(), ModeTune, [][]model.PitchEvent{
		tune(40, 3)[:16],
		nil,
		events(60),
		tune(40, 9)[24:40],
	}, 1)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Nil(t, reports[0].Failure)
	assert.Equal(t, "tune-1", reports[0].Results[0].CandidateID)
	assert.Equal(t, EmptySequence, reports[1].Failure.Kind)
	assert.Equal(t, QueryTooShort, reports[2].Failure.Kind)
	assert.Nil(t, reports[3].Failure)
	assert.Equal(t, "tune-3", reports[3].Results[0].CandidateID)

	ids := make(map[uuid.UUID]bool)
	for _, r := range reports {
		ids[r.QueryID] = true
	}
	assert.Len(t, ids, 4)
}
