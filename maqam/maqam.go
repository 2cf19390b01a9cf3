package maqam

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
)

// Definition is the on-disk shape of a template. Weights may be omitted,
// in which case every degree weighs the same.
type Definition struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Offsets     []float64 `json:"offsets"`
	Weights     []float64 `json:"weights,omitempty"`
}

type TemplateError struct {
	Name   string
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%v: template %q: %s", model.ErrMalformedTemplate, e.Name, e.Reason)
}

func (e *TemplateError) Unwrap() error {
	return model.ErrMalformedTemplate
}

// Library is read-only once loaded and safe to share between queries.
type Library struct {
	templates []model.ModeTemplate
	byName    map[string]int
}

func Load(defs []Definition) (*Library, error) {
	lib := &Library{byName: make(map[string]int)}
	for _, def := range defs {
		t, err := build(def)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(t.Name)
		if _, ok := lib.byName[key]; ok {
			return nil, &TemplateError{Name: def.Name, Reason: "declared twice"}
		}
		lib.byName[key] = len(lib.templates)
		lib.templates = append(lib.templates, t)
	}
	if len(lib.templates) == 0 {
		return nil, &TemplateError{Reason: "catalog is empty"}
	}
	return lib, nil
}

func build(def Definition) (model.ModeTemplate, error) {
	var t model.ModeTemplate
	if strings.TrimSpace(def.Name) == "" {
		return t, &TemplateError{Name: def.Name, Reason: "missing name"}
	}
	if len(def.Offsets) == 0 {
		return t, &TemplateError{Name: def.Name, Reason: "no degrees"}
	}
	if def.Weights != nil && len(def.Weights) != len(def.Offsets) {
		return t, &TemplateError{Name: def.Name, Reason: fmt.Sprintf("%d weights for %d offsets", len(def.Weights), len(def.Offsets))}
	}

	seen := make(map[float64]bool)
	var total float64
	for i, offset := range def.Offsets {
		if math.IsNaN(offset) || offset < 0 || offset >= 12 {
			return t, &TemplateError{Name: def.Name, Reason: fmt.Sprintf("offset %v outside [0,12)", offset)}
		}
		if seen[offset] {
			return t, &TemplateError{Name: def.Name, Reason: fmt.Sprintf("offset %v repeated", offset)}
		}
		seen[offset] = true

		weight := 1.0
		if def.Weights != nil {
			weight = def.Weights[i]
		}
		if !(weight > 0) || math.IsInf(weight, 0) {
			return t, &TemplateError{Name: def.Name, Reason: fmt.Sprintf("weight %v for offset %v is not positive", weight, offset)}
		}
		total += weight
		t.Degrees = append(t.Degrees, model.Degree{Offset: offset, Weight: weight})
	}

	// weights sum to the degree count
	scale := float64(len(t.Degrees)) / total
	for i := range t.Degrees {
		t.Degrees[i].Weight *= scale
	}
	t.Name = def.Name
	t.Description = def.Description
	return t, nil
}

func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", model.ErrMalformedTemplate, path, err)
	}
	return Load(defs)
}

func mustLoad(defs []Definition) *Library {
	lib, err := Load(defs)
	if err != nil {
		panic("built-in maqam catalog is broken: " + err.Error())
	}
	return lib
}

// Default is the semitone catalog used for scoring.
func Default() *Library {
	return mustLoad(semitoneCatalog)
}

func QuarterTone() *Library {
	return mustLoad(quarterToneCatalog)
}

// Templates in declaration order.
func (l *Library) Templates() []model.ModeTemplate {
	res := make([]model.ModeTemplate, len(l.templates))
	copy(res, l.templates)
	return res
}

func (l *Library) Len() int {
	return len(l.templates)
}

func (l *Library) Get(name string) (model.ModeTemplate, bool) {
	idx, ok := l.byName[strings.ToLower(name)]
	if !ok {
		return model.ModeTemplate{}, false
	}
	return l.templates[idx], true
}

// NoteNames spells the template's degrees from the given root pitch class.
// Quarter-tone degrees get a "+" after the nearest lower semitone.
func NoteNames(t model.ModeTemplate, root int) []string {
	var res []string
	for _, d := range t.Degrees {
		pc := normalize.PitchClass(d.Offset + float64(root))
		name := noteNames[int(math.Floor(pc))]
		if pc != math.Floor(pc) {
			name += "+"
		}
		res = append(res, name)
	}
	return res
}

func NoteName(pc int) string {
	return noteNames[((pc%12)+12)%12]
}
