package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryID(t *testing.T) {
	media := filepath.Join("data", "midi")
	assert.Equal(t, "hijaz/zuruni.mid", EntryID(media, filepath.Join(media, "hijaz", "zuruni.mid")))
	assert.Equal(t, "other.mid", EntryID(media, filepath.Join("elsewhere", "other.mid")))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "lamma bada", Title("/x/y/lamma bada.midi"))
}

func TestCreateEntries(t *testing.T) {
	entries := CreateEntries("m", []string{"m/b.mid", "m/a/c.mid", "m/a.mid", "m/b.mid"})
	assert.Equal(t, []Entry{
		{ID: "a.mid", Path: "m/a.mid"},
		{ID: "a/c.mid", Path: "m/a/c.mid"},
		{ID: "b.mid", Path: "m/b.mid"},
	}, entries)
}
