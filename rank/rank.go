package rank

import (
	"math"
	"sort"

	"github.com/jsphweid/melodex/model"
)

type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// Item is one scored unit (a chunk or a template). Order is the insertion
// order of its group and breaks ties between groups.
type Item struct {
	Group  string
	Order  int
	Key    float64
	Result model.MatchResult
}

func (d Direction) better(a, b float64) bool {
	// NaN loses against everything
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	if math.IsNaN(a) {
		return false
	}
	if d == LowerIsBetter {
		return a < b
	}
	return a > b
}

// Aggregate keeps the best item per group and ranks the groups best first.
// Within a group the earliest item wins a tie. topK <= 0 keeps everything.
func Aggregate(items []Item, dir Direction, topK int) []model.MatchResult {
	best := make(map[string]int)
	var groups []Item
	for _, it := range items {
		idx, ok := best[it.Group]
		if !ok {
			best[it.Group] = len(groups)
			groups = append(groups, it)
			continue
		}
		if dir.better(it.Key, groups[idx].Key) {
			groups[idx] = it
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if dir.better(a.Key, b.Key) {
			return true
		}
		if dir.better(b.Key, a.Key) {
			return false
		}
		return a.Order < b.Order
	})

	if topK > 0 && topK < len(groups) {
		groups = groups[:topK]
	}
	res := make([]model.MatchResult, len(groups))
	for i, g := range groups {
		res[i] = g.Result
	}
	return res
}
