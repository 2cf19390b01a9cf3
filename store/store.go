package store

import (
	"errors"
	"fmt"

	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/reference"
)

var ErrNotFound = errors.New("no saved library")

// Snapshot is everything needed to rebuild a library without re-chunking.
type Snapshot struct {
	Config  chunk.Config
	Entries []model.ReferenceEntry
}

type Store interface {
	Save(s Snapshot) error
	Load() (Snapshot, error)
	Close() error
}

// SnapshotOf captures lib. Empty metadata is stored as nil so every backend
// loads the same entries back.
func SnapshotOf(lib *reference.Library) Snapshot {
	entries := make([]model.ReferenceEntry, len(lib.Entries()))
	copy(entries, lib.Entries())
	for i := range entries {
		if len(entries[i].Metadata) == 0 {
			entries[i].Metadata = nil
		}
	}
	return Snapshot{Config: lib.Config(), Entries: entries}
}

func (s Snapshot) Library() (*reference.Library, error) {
	return reference.FromEntries(s.Config, s.Entries)
}

// Open picks a backend by name, keeping its files under dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "gob", "":
		return NewFileStore(dir), nil
	case "sqlite":
		return NewSQLiteStore(dir)
	}
	return nil, fmt.Errorf("%w: unknown store backend %q", model.ErrInvalidConfig, backend)
}

func LoadLibrary(s Store) (*reference.Library, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	return snap.Library()
}
