package model

import "errors"

var (
	ErrEmptySequence   = errors.New("note sequence has no events")
	ErrUnorderedOnsets = errors.New("note onsets are not in order")
	ErrInvalidEvent    = errors.New("invalid pitch event")

	// fatal at startup, the static catalog is corrupt
	ErrMalformedTemplate = errors.New("malformed mode template")

	ErrInsufficientData = errors.New("not enough notes to chunk")
	ErrQueryTooShort    = errors.New("query too short to align")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// programming error, the caller queried before Prepare
	ErrLibraryNotPrepared = errors.New("reference library not prepared")
)
