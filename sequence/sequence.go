package sequence

import (
	"context"
	"math"
	"runtime"

	"github.com/jsphweid/melodex/dtw"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/rank"
	"github.com/jsphweid/melodex/reference"
	"github.com/remeh/sizedwaitgroup"
	"gonum.org/v1/gonum/floats"
)

// AllTranspositions covers every pitch class once, centered on zero.
var AllTranspositions = []int{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5, 6}

type Config struct {
	// semitone shifts tried on the query, lowest cost wins per chunk
	Transpositions []int
	Band           int
	// 0 compares pitch only
	DurationPenalty float64
	FoldPitchClass  bool
	MinQueryNotes   int
	// 0 scores every chunk
	MaxChunks int
	Workers   int
	// below this many distinct pitches a result is flagged low confidence
	MinDistinctPitches int
}

func DefaultConfig() Config {
	return Config{
		Transpositions:     []int{-1, 0, 1},
		Band:               8,
		MinQueryNotes:      2,
		Workers:            runtime.NumCPU(),
		MinDistinctPitches: 3,
	}
}

type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher {
	if len(cfg.Transpositions) == 0 {
		cfg.Transpositions = []int{0}
	}
	if cfg.MinQueryNotes < 1 {
		cfg.MinQueryNotes = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Matcher{cfg: cfg}
}

func (m *Matcher) Config() Config {
	return m.cfg
}

// ChunkScore is the best alignment of the query against one chunk.
type ChunkScore struct {
	Ref           reference.ChunkRef
	Cost          float64
	PathLength    int
	Transposition int
}

type series struct {
	pitches   []float64
	durations []float64
}

// durations relative to the sequence's own median, so tempo does not count
func relativeDurations(n model.NormalizedSequence) []float64 {
	d := n.Durations()
	med := normalize.Median(d)
	if med <= 0 || math.IsNaN(med) {
		return nil
	}
	floats.Scale(1/med, d)
	return d
}

func toSeries(n model.NormalizedSequence) series {
	return series{pitches: n.Pitches(), durations: relativeDurations(n)}
}

func circularDistance(a, b float64) float64 {
	d := math.Abs(normalize.PitchClass(a) - normalize.PitchClass(b))
	if d > 6 {
		d = 12 - d
	}
	return d
}

func (m *Matcher) localCost(q, r series, t float64) dtw.LocalCost {
	durations := m.cfg.DurationPenalty > 0 && q.durations != nil && r.durations != nil
	return func(i, j int) float64 {
		var c float64
		if m.cfg.FoldPitchClass {
			c = circularDistance(q.pitches[i]+t, r.pitches[j])
		} else {
			c = math.Abs(q.pitches[i] + t - r.pitches[j])
		}
		if durations {
			a, b := q.durations[i], r.durations[j]
			if a > 0 && b > 0 {
				c += m.cfg.DurationPenalty * math.Abs(math.Log2(a/b))
			}
		}
		return c
	}
}

func (m *Matcher) scoreChunk(q series, ref reference.ChunkRef) ChunkScore {
	r := toSeries(ref.Chunk.Sequence)
	res := ChunkScore{Ref: ref, Cost: math.Inf(1)}
	for _, t := range m.cfg.Transpositions {
		out, err := dtw.Align(len(q.pitches), len(r.pitches), m.localCost(q, r, float64(t)), dtw.Options{
			Band:         m.cfg.Band,
			AbandonAbove: res.Cost,
		})
		if err != nil || out.Abandoned {
			continue
		}
		if out.Cost < res.Cost {
			res.Cost = out.Cost
			res.PathLength = out.PathLength
			res.Transposition = t
		}
	}
	return res
}

func (m *Matcher) check(query model.NormalizedSequence, lib *reference.Library) error {
	if !lib.Prepared() {
		return model.ErrLibraryNotPrepared
	}
	if query.Len() < m.cfg.MinQueryNotes {
		return model.ErrQueryTooShort
	}
	return nil
}

// ScoreChunks aligns the query against every chunk, in library order.
func (m *Matcher) ScoreChunks(ctx context.Context, query model.NormalizedSequence, lib *reference.Library) ([]ChunkScore, error) {
	if err := m.check(query, lib); err != nil {
		return nil, err
	}
	refs := lib.Chunks()
	if m.cfg.MaxChunks > 0 && m.cfg.MaxChunks < len(refs) {
		refs = refs[:m.cfg.MaxChunks]
	}
	q := toSeries(query)

	scores := make([]ChunkScore, len(refs))
	wg := sizedwaitgroup.New(m.cfg.Workers)
	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		wg.Add()
		go func(i int, ref reference.ChunkRef) {
			defer wg.Done()
			scores[i] = m.scoreChunk(q, ref)
		}(i, ref)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func Similarity(cost float64) float64 {
	if math.IsInf(cost, 1) || math.IsNaN(cost) {
		return 0
	}
	return 1 / (1 + cost)
}

// ScoreAll ranks reference entries by their best chunk, lowest cost first.
func (m *Matcher) ScoreAll(ctx context.Context, query model.NormalizedSequence, lib *reference.Library, topK int) ([]model.MatchResult, error) {
	scores, err := m.ScoreChunks(ctx, query, lib)
	if err != nil {
		return nil, err
	}
	lowConfidence := query.DistinctPitches() < m.cfg.MinDistinctPitches
	entries := lib.Entries()

	items := make([]rank.Item, len(scores))
	for i, s := range scores {
		c := s.Ref.Chunk
		items[i] = rank.Item{
			Group: c.EntryID,
			Order: s.Ref.EntryOrder,
			Key:   s.Cost,
			Result: model.MatchResult{
				CandidateID:   c.EntryID,
				Title:         entries[s.Ref.EntryOrder].Title,
				Score:         Similarity(s.Cost),
				Cost:          s.Cost,
				Transposition: s.Transposition,
				LowConfidence: lowConfidence,
				Detail: &model.AlignmentDetail{
					ChunkIndex: c.Index,
					Offset:     c.Offset,
					Onset:      c.Onset,
					PathLength: s.PathLength,
					Partial:    c.Partial,
				},
			},
		}
	}
	return rank.Aggregate(items, rank.LowerIsBetter, topK), nil
}
