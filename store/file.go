package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const libraryFile = "library.gob"

type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) Path() string {
	return filepath.Join(f.dir, libraryFile)
}

func (f *FileStore) Save(s Snapshot) error {
	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode library: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0777); err != nil {
		return err
	}

	// readers only ever see a complete file
	tmp := f.Path() + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0666); err != nil {
		return fmt.Errorf("write failed for file %v: %w", tmp, err)
	}
	return os.Rename(tmp, f.Path())
}

func (f *FileStore) Load() (Snapshot, error) {
	var s Snapshot
	file, err := os.Open(f.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("could not load binary file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return s, fmt.Errorf("could not decode binary file: %w", err)
	}
	return s, nil
}

func (f *FileStore) Close() error {
	return nil
}
