package scale

import (
	"math"
	"runtime"

	"github.com/jsphweid/melodex/maqam"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/rank"
	"github.com/remeh/sizedwaitgroup"
	"gonum.org/v1/gonum/floats"
)

const numShifts = 12

// slack for float noise when comparing against the tolerance
const epsilon = 1e-9

type Config struct {
	Workers int
	// below this many distinct pitch classes a result is flagged low confidence
	MinPitchClasses int
}

func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU(), MinPitchClasses: 3}
}

type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Matcher{cfg: cfg}
}

type TemplateScore struct {
	Template string
	Accuracy float64
	Shift    int
}

type query struct {
	classes []float64
	weights []float64
	total   float64
	// no note carried weight, every note counts once
	unweighted bool
}

func prepare(q model.NormalizedSequence) query {
	var res query
	for _, e := range q.Events {
		res.classes = append(res.classes, normalize.PitchClass(e.Pitch+q.Median))
		res.weights = append(res.weights, e.Weight)
	}
	if len(res.weights) > 0 {
		res.total = floats.Sum(res.weights)
	}
	if res.total <= 0 && len(res.weights) > 0 {
		for i := range res.weights {
			res.weights[i] = 1
		}
		res.total = float64(len(res.weights))
		res.unweighted = true
	}
	return res
}

func circularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 6 {
		d = 12 - d
	}
	return d
}

// Tolerance is half the smallest circular gap between the template's degrees.
func Tolerance(t model.ModeTemplate) float64 {
	if len(t.Degrees) < 2 {
		return 6
	}
	gap := 12.0
	for i, a := range t.Degrees {
		for _, b := range t.Degrees[i+1:] {
			gap = math.Min(gap, circularDistance(a.Offset, b.Offset))
		}
	}
	return gap / 2
}

func maxWeight(t model.ModeTemplate) float64 {
	var res float64
	for _, d := range t.Degrees {
		res = math.Max(res, d.Weight)
	}
	return res
}

func accuracy(q query, t model.ModeTemplate, shift int, tol, maxW float64) float64 {
	if q.total <= 0 {
		return 0
	}
	var hit float64
	for i, pc := range q.classes {
		rel := normalize.PitchClass(pc - float64(shift))
		nearest := -1
		dist := math.Inf(1)
		for j, d := range t.Degrees {
			if dd := circularDistance(rel, d.Offset); dd < dist {
				dist = dd
				nearest = j
			}
		}
		if nearest >= 0 && dist <= tol+epsilon {
			hit += q.weights[i] * t.Degrees[nearest].Weight / maxW
		}
	}
	return hit / q.total
}

func score(q query, t model.ModeTemplate) TemplateScore {
	res := TemplateScore{Template: t.Name}
	tol := Tolerance(t)
	maxW := maxWeight(t)
	best := -1.0
	for s := 0; s < numShifts; s++ {
		if acc := accuracy(q, t, s, tol, maxW); acc > best {
			best = acc
			res.Shift = s
		}
	}
	res.Accuracy = best
	return res
}

// Score finds the best root for a single template. Shift is the pitch class
// the template's first degree lands on.
func Score(q model.NormalizedSequence, t model.ModeTemplate) TemplateScore {
	return score(prepare(q), t)
}

func distinctClasses(q query) int {
	seen := make(map[float64]bool)
	for _, pc := range q.classes {
		seen[pc] = true
	}
	return len(seen)
}

// ScoreAll ranks every template against the query, best first. Short,
// degenerate or unweighted queries still get a ranking, flagged LowConfidence.
func (m *Matcher) ScoreAll(q model.NormalizedSequence, lib *maqam.Library) []model.MatchResult {
	templates := lib.Templates()
	prepared := prepare(q)
	lowConfidence := prepared.unweighted || distinctClasses(prepared) < m.cfg.MinPitchClasses

	scores := make([]TemplateScore, len(templates))
	wg := sizedwaitgroup.New(m.cfg.Workers)
	for i, t := range templates {
		wg.Add()
		go func(i int, t model.ModeTemplate) {
			defer wg.Done()
			scores[i] = score(prepared, t)
		}(i, t)
	}
	wg.Wait()

	items := make([]rank.Item, len(scores))
	for i, s := range scores {
		items[i] = rank.Item{
			Group: s.Template,
			Order: i,
			Key:   s.Accuracy,
			Result: model.MatchResult{
				CandidateID:   s.Template,
				Score:         s.Accuracy,
				Transposition: s.Shift,
				LowConfidence: lowConfidence,
			},
		}
	}
	return rank.Aggregate(items, rank.HigherIsBetter, 0)
}
