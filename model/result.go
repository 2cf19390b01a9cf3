package model

type AlignmentDetail struct {
	ChunkIndex int     `json:"chunk_index"`
	Offset     int     `json:"offset"`
	Onset      float64 `json:"onset"`
	PathLength int     `json:"path_length"`
	Partial    bool    `json:"partial,omitempty"`
}

// MatchResult is one ranked candidate. For templates Score is the weighted
// accuracy; for tunes it is 1/(1+Cost).
type MatchResult struct {
	CandidateID   string           `json:"candidate_id"`
	Title         string           `json:"title,omitempty"`
	Score         float64          `json:"score"`
	Cost          float64          `json:"cost,omitempty"`
	Transposition int              `json:"transposition"`
	LowConfidence bool             `json:"low_confidence,omitempty"`
	Detail        *AlignmentDetail `json:"detail,omitempty"`
}
