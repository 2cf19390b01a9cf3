package dtw

import (
	"errors"
	"math"
)

// LocalCost returns the non-negative cost of pairing query[i] with ref[j].
type LocalCost func(i, j int) float64

type Options struct {
	// Sakoe-Chiba radius; widened to the length difference so the end cell
	// stays reachable. <= 0 means unconstrained.
	Band int

	// Stop once no path can end below this normalized cost. +Inf or 0
	// disables it.
	AbandonAbove float64
}

type Result struct {
	Raw        float64
	PathLength int
	// Raw divided by PathLength
	Cost      float64
	Abandoned bool
}

var ErrEmpty = errors.New("dtw: empty sequence")

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Align runs the standard recurrence
//
//	D(i,j) = c(i,j) + min(D(i-1,j), D(i,j-1), D(i-1,j-1))
//
// keeping two rows and tracking the length of the chosen path.
func Align(n, m int, local LocalCost, opts Options) (Result, error) {
	if n == 0 || m == 0 {
		return Result{}, ErrEmpty
	}
	band := -1
	if opts.Band > 0 {
		band = opts.Band
		if d := abs(n - m); d > band {
			band = d
		}
	}
	abandon := opts.AbandonAbove > 0 && !math.IsInf(opts.AbandonAbove, 1)
	maxPath := float64(n + m - 1)

	inf := math.Inf(1)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	prevLen := make([]int, m+1)
	curLen := make([]int, m+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		cur[0] = inf
		rowMin := inf
		for j := 1; j <= m; j++ {
			if band >= 0 && abs(i-j) > band {
				cur[j] = inf
				continue
			}
			// ties prefer the diagonal
			best, bestLen := prev[j-1], prevLen[j-1]
			if prev[j] < best {
				best, bestLen = prev[j], prevLen[j]
			}
			if cur[j-1] < best {
				best, bestLen = cur[j-1], curLen[j-1]
			}
			if math.IsInf(best, 1) {
				cur[j] = inf
				continue
			}
			cur[j] = best + local(i-1, j-1)
			curLen[j] = bestLen + 1
			rowMin = math.Min(rowMin, cur[j])
		}
		if abandon && rowMin/maxPath > opts.AbandonAbove {
			return Result{Raw: inf, Cost: inf, Abandoned: true}, nil
		}
		prev, cur = cur, prev
		prevLen, curLen = curLen, prevLen
	}

	raw := prev[m]
	length := prevLen[m]
	if math.IsInf(raw, 1) || length == 0 {
		return Result{Raw: inf, Cost: inf}, nil
	}
	return Result{Raw: raw, PathLength: length, Cost: raw / float64(length)}, nil
}

// AlignValues aligns two scalar series under absolute difference.
func AlignValues(query, ref []float64, opts Options) (Result, error) {
	return Align(len(query), len(ref), func(i, j int) float64 {
		return math.Abs(query[i] - ref[j])
	}, opts)
}
