package rank

import (
	"math"
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
)

func item(group string, order int, key float64, chunk int) Item {
	return Item{
		Group: group,
		Order: order,
		Key:   key,
		Result: model.MatchResult{
			CandidateID: group,
			Cost:        key,
			Detail:      &model.AlignmentDetail{ChunkIndex: chunk},
		},
	}
}

func ids(results []model.MatchResult) []string {
	var res []string
	for _, r := range results {
		res = append(res, r.CandidateID)
	}
	return res
}

func TestKeepsBestChunkPerEntry(t *testing.T) {
	items := []Item{
		item("a", 0, 3.0, 0),
		item("a", 0, 1.0, 1),
		item("b", 1, 2.0, 0),
		item("a", 0, 1.5, 2),
	}
	res := Aggregate(items, LowerIsBetter, 0)

	assert := assert.New(t)
	assert.Equal([]string{"a", "b"}, ids(res))
	assert.Equal(1, res[0].Detail.ChunkIndex)
	assert.Equal(1.0, res[0].Cost)
}

func TestTiesKeepInsertionOrder(t *testing.T) {
	items := []Item{
		item("c", 2, 1.0, 0),
		item("a", 0, 1.0, 0),
		item("b", 1, 1.0, 0),
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(Aggregate(items, HigherIsBetter, 0)))
}

func TestTieWithinGroupKeepsFirstChunk(t *testing.T) {
	items := []Item{item("a", 0, 1.0, 4), item("a", 0, 1.0, 7)}
	res := Aggregate(items, LowerIsBetter, 0)
	assert.Equal(t, 4, res[0].Detail.ChunkIndex)
}

func TestHigherIsBetter(t *testing.T) {
	items := []Item{item("x", 0, 0.2, 0), item("y", 1, 0.9, 0), item("z", 2, 0.5, 0)}
	assert.Equal(t, []string{"y", "z", "x"}, ids(Aggregate(items, HigherIsBetter, 0)))
}

func TestTopK(t *testing.T) {
	items := []Item{item("x", 0, 3, 0), item("y", 1, 1, 0), item("z", 2, 2, 0)}
	assert.Equal(t, []string{"y", "z"}, ids(Aggregate(items, LowerIsBetter, 2)))
	assert.Len(t, Aggregate(items, LowerIsBetter, 10), 3)
	assert.Len(t, Aggregate(items, LowerIsBetter, -1), 3)
}

func TestNaNSortsLast(t *testing.T) {
	items := []Item{item("x", 0, math.NaN(), 0), item("y", 1, 5, 0)}
	assert.Equal(t, []string{"y", "x"}, ids(Aggregate(items, LowerIsBetter, 0)))
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, LowerIsBetter, 3))
}
