package reference

import (
	"fmt"

	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
)

type Input struct {
	ID       string
	Title    string
	Artist   string
	Source   string
	Metadata map[string]string
	Sequence model.NormalizedSequence
}

// ChunkRef points at a chunk together with its entry's position in the
// library, which is the tie-break order for ranking.
type ChunkRef struct {
	EntryOrder int
	Chunk      *model.Chunk
}

// Library is built once and only read afterwards, so concurrent queries
// can share it.
type Library struct {
	cfg      chunk.Config
	entries  []model.ReferenceEntry
	byID     map[string]int
	chunks   []ChunkRef
	prepared bool
}

// Prepare chunks every input. Any entry shorter than the window fails the
// whole preparation; callers that want to skip such entries can check
// Eligible first.
func Prepare(inputs []Input, cfg chunk.Config) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	entries := make([]model.ReferenceEntry, 0, len(inputs))
	for _, in := range inputs {
		chunks, err := chunk.Chunk(in.Sequence, cfg)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", in.ID, err)
		}
		for i := range chunks {
			chunks[i].EntryID = in.ID
		}
		entries = append(entries, model.ReferenceEntry{
			ID:       in.ID,
			Title:    in.Title,
			Artist:   in.Artist,
			Source:   in.Source,
			Metadata: in.Metadata,
			Length:   in.Sequence.Len(),
			Chunks:   chunks,
		})
	}
	return FromEntries(cfg, entries)
}

// FromEntries rebuilds a library from already chunked entries, e.g. a cache.
func FromEntries(cfg chunk.Config, entries []model.ReferenceEntry) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lib := &Library{
		cfg:     cfg,
		entries: entries,
		byID:    make(map[string]int, len(entries)),
	}
	for i := range lib.entries {
		e := &lib.entries[i]
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", model.ErrInvalidConfig, i)
		}
		if _, ok := lib.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: entry %q appears twice", model.ErrInvalidConfig, e.ID)
		}
		lib.byID[e.ID] = i
		for j := range e.Chunks {
			c := &e.Chunks[j]
			if c.EntryID != e.ID {
				return nil, fmt.Errorf("%w: chunk %d of %q belongs to %q", model.ErrInvalidConfig, j, e.ID, c.EntryID)
			}
			lib.chunks = append(lib.chunks, ChunkRef{EntryOrder: i, Chunk: c})
		}
	}
	lib.prepared = true
	return lib, nil
}

// Eligible reports whether a sequence of n events can be chunked with cfg.
func Eligible(cfg chunk.Config, n int) bool {
	return n >= cfg.WindowSize
}

func (l *Library) Prepared() bool {
	return l != nil && l.prepared
}

func (l *Library) Config() chunk.Config {
	return l.cfg
}

// Entries in insertion order. Callers must not modify them.
func (l *Library) Entries() []model.ReferenceEntry {
	return l.entries
}

func (l *Library) Entry(id string) (model.ReferenceEntry, bool) {
	idx, ok := l.byID[id]
	if !ok {
		return model.ReferenceEntry{}, false
	}
	return l.entries[idx], true
}

func (l *Library) Chunks() []ChunkRef {
	return l.chunks
}

func (l *Library) Summary() model.LibrarySummary {
	return model.LibrarySummary{
		NumEntries: len(l.entries),
		NumChunks:  len(l.chunks),
		WindowSize: l.cfg.WindowSize,
		HopSize:    l.cfg.HopSize,
	}
}
