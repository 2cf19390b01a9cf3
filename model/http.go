package model

type SearchRequestBody struct {
	Notes []PitchEvent `json:"notes"`
	TopK  int          `json:"top_k"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
	// stable failure kind, set for queries that could not be analyzed
	Kind string `json:"kind,omitempty"`
}

type LibrarySummary struct {
	NumEntries int `json:"num_entries"`
	NumChunks  int `json:"num_chunks"`
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`
}
