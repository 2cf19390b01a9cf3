package chunk

import (
	"fmt"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
)

type Config struct {
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`
	// a tail window shorter than this is dropped
	MinChunkNotes int `json:"min_chunk_notes"`
}

func DefaultConfig() Config {
	return Config{WindowSize: 16, HopSize: 8, MinChunkNotes: 8}
}

func (c Config) Validate() error {
	if c.WindowSize <= 0 || c.HopSize <= 0 {
		return fmt.Errorf("%w: window %d and hop %d must be positive", model.ErrInvalidConfig, c.WindowSize, c.HopSize)
	}
	if c.HopSize >= c.WindowSize {
		return fmt.Errorf("%w: hop %d must be smaller than window %d", model.ErrInvalidConfig, c.HopSize, c.WindowSize)
	}
	if c.MinChunkNotes < 1 || c.MinChunkNotes > c.WindowSize {
		return fmt.Errorf("%w: min chunk notes %d must be in [1,%d]", model.ErrInvalidConfig, c.MinChunkNotes, c.WindowSize)
	}
	return nil
}

// NumFull is the number of full windows over a sequence of length n.
func (c Config) NumFull(n int) int {
	if n < c.WindowSize {
		return 0
	}
	return (n-c.WindowSize)/c.HopSize + 1
}

// Chunk slides a window over seq. Full windows start every HopSize events
// while they fit; if events remain uncovered, one more window starting a hop
// later runs to the end and is kept when it has at least MinChunkNotes.
// Every window is re-centered on its own median.
func Chunk(seq model.NormalizedSequence, cfg Config) ([]model.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := seq.Len()
	if n < cfg.WindowSize {
		return nil, fmt.Errorf("%w: %d notes, window is %d", model.ErrInsufficientData, n, cfg.WindowSize)
	}

	var res []model.Chunk
	full := cfg.NumFull(n)
	for i := 0; i < full; i++ {
		offset := i * cfg.HopSize
		res = append(res, makeChunk(seq, i, offset, offset+cfg.WindowSize, false))
	}

	lastEnd := (full-1)*cfg.HopSize + cfg.WindowSize
	if lastEnd < n {
		offset := full * cfg.HopSize
		if n-offset >= cfg.MinChunkNotes {
			res = append(res, makeChunk(seq, full, offset, n, true))
		}
	}
	return res, nil
}

func makeChunk(seq model.NormalizedSequence, index, from, to int, partial bool) model.Chunk {
	events := seq.Events[from:to]
	return model.Chunk{
		Index:    index,
		Offset:   from,
		Onset:    events[0].Onset,
		Partial:  partial,
		Sequence: normalize.Recenter(events, seq.Median, seq.QuantizeStep),
	}
}
