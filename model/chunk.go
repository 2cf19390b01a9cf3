package model

type Chunk struct {
	EntryID string
	Index   int

	// event offset into the entry's full sequence
	Offset int
	// onset of the first event, in the entry's time unit
	Onset   float64
	Partial bool

	Sequence NormalizedSequence
}

type ReferenceEntry struct {
	ID       string
	Title    string
	Artist   string
	Source   string
	Metadata map[string]string

	// number of events in the full sequence
	Length int
	Chunks []Chunk
}

type TuneMetadata struct {
	Title   string
	Artist  string
	Release string
	Year    uint
}
