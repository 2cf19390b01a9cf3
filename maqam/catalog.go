package maqam

// Semitone positions used for scoring. Rast, siga and ajam collapse onto the
// same set under 12-tone quantization; declaration order settles their ties.
var semitoneCatalog = []Definition{
	{Name: "ajam", Offsets: []float64{0, 2, 4, 5, 7, 9, 11},
		Description: "Bright, major-like maqam without quarter tones."},
	{Name: "nahawand", Offsets: []float64{0, 2, 3, 5, 7, 8, 10},
		Description: "Natural-minor-like maqam with a melancholic character."},
	{Name: "rast", Offsets: []float64{0, 2, 4, 5, 7, 9, 11},
		Description: "Foundational maqam with a neutral third, approximated to semitones."},
	{Name: "hijaz", Offsets: []float64{0, 1, 4, 5, 7, 8, 10},
		Description: "Augmented second between the second and third degrees."},
	{Name: "kurd", Offsets: []float64{0, 1, 3, 5, 7, 8, 10},
		Description: "Phrygian-like maqam opening on a minor second."},
	{Name: "bayati", Offsets: []float64{0, 2, 3, 5, 7, 9, 10},
		Description: "Neutral second, approximated to semitones."},
	{Name: "saba", Offsets: []float64{0, 2, 3, 4, 7, 8, 10},
		Description: "Diminished fourth gives an unresolved sound."},
	{Name: "siga", Offsets: []float64{0, 2, 4, 5, 7, 9, 11},
		Description: "Neutral seconds and thirds, approximated to semitones."},
}

// Precise intervals with quarter tones.
var quarterToneCatalog = []Definition{
	{Name: "ajam", Offsets: []float64{0, 2, 4, 5, 7, 9, 11}},
	{Name: "rast", Offsets: []float64{0, 2, 3.5, 5, 7, 9, 10.5}},
	{Name: "nahawand", Offsets: []float64{0, 2, 3, 5, 7, 8, 10}},
	{Name: "hijaz", Offsets: []float64{0, 1, 4, 5, 7, 8, 10}},
	{Name: "kurd", Offsets: []float64{0, 1, 3, 5, 7, 8, 10}},
	{Name: "bayati", Offsets: []float64{0, 1.5, 3, 5, 7, 9, 10.5}},
	{Name: "saba", Offsets: []float64{0, 1.5, 3, 4, 7, 8, 10}},
	{Name: "siga", Offsets: []float64{0, 1.5, 3.5, 5, 7, 8.5, 10.5}},
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
