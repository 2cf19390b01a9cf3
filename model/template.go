package model

type Degree struct {
	Offset float64 `json:"offset"`
	Weight float64 `json:"weight"`
}

type ModeTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Degrees     []Degree `json:"degrees"`
}

func (t ModeTemplate) Offsets() []float64 {
	res := make([]float64, len(t.Degrees))
	for i, d := range t.Degrees {
		res[i] = d.Offset
	}
	return res
}
