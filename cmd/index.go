package cmd

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/melodex/db"
	"github.com/jsphweid/melodex/file"
	"github.com/jsphweid/melodex/logging"
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/notes"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/reference"
	"github.com/jsphweid/melodex/store"
	"github.com/jsphweid/melodex/util"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
)

var (
	indexMediaDir string
	indexMetadata bool
)

func init() {
	indexCmd.Flags().StringVar(&indexMediaDir, "media", "", "directory of reference MIDI files (default $MEDIA_PATH)")
	indexCmd.Flags().BoolVar(&indexMetadata, "metadata", false, "look up titles and artists in DynamoDB")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [maxNum]",
	Short: "Builds the reference library",
	Long:  `Extracts a melody from every MIDI file in the media directory, chunks it and saves the library.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			maxNum = arg1
		}
		mediaDir := indexMediaDir
		if mediaDir == "" {
			var err error
			if mediaDir, err = cfg.MediaDirOrErr(); err != nil {
				return err
			}
		}
		lib, err := Index(mediaDir, maxNum, indexMetadata)
		if err != nil {
			return err
		}
		return save(lib)
	},
}

func extract(entry file.Entry) (reference.Input, error) {
	parsed, err := midi.ReadMidiFile(entry.Path)
	if err != nil {
		return reference.Input{}, err
	}
	seq, err := notes.Extract(parsed, notes.Options{Policy: cfg.WeightPolicy})
	if err != nil {
		return reference.Input{}, err
	}
	norm, err := normalize.Normalize(seq, normalize.Options{QuantizeStep: cfg.QuantizeStep})
	if err != nil {
		return reference.Input{}, err
	}
	return reference.Input{
		ID:       entry.ID,
		Title:    file.Title(entry.Path),
		Source:   entry.Path,
		Sequence: norm,
	}, nil
}

func enrich(inputs []reference.Input) error {
	meta, err := db.Connect(cfg.DynamoDBEndpoint, cfg.AWSRegion, cfg.MetadataTable)
	if err != nil {
		return err
	}
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.ID
	}
	found, err := meta.Lookup(ids)
	if err != nil {
		return err
	}
	for i := range inputs {
		if m, ok := found[inputs[i].ID]; ok {
			db.Apply(m, &inputs[i])
		}
	}
	fmt.Printf("Found metadata for %v of %v files\n", humanize.Comma(int64(len(found))), humanize.Comma(int64(len(inputs))))
	return nil
}

// Index reads every MIDI file under mediaDir into a prepared library. Files
// that cannot be read or are too short to chunk are skipped.
func Index(mediaDir string, maxNum int, withMetadata bool) (*reference.Library, error) {
	logger := logging.GetLogger()
	paths, err := util.GatherAllMidiPaths(mediaDir, maxNum)
	if err != nil {
		return nil, err
	}
	entries := file.CreateEntries(mediaDir, paths)

	results := make([]*reference.Input, len(entries))
	var mu sync.Mutex
	var done int
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for i, entry := range entries {
		wg.Add()
		go func(i int, entry file.Entry) {
			defer wg.Done()
			in, err := extract(entry)

			mu.Lock()
			done++
			fmt.Printf("Processing %v of %v midi files\n", done, len(entries))
			mu.Unlock()

			if err != nil {
				logger.Warn("skipping file", slog.String("path", entry.Path), slog.Any("error", err))
				return
			}
			if !reference.Eligible(cfg.Chunk, in.Sequence.Len()) {
				logger.Warn("skipping file, melody too short to chunk",
					slog.String("path", entry.Path),
					slog.Int("notes", in.Sequence.Len()),
					slog.Int("windowSize", cfg.Chunk.WindowSize))
				return
			}
			results[i] = &in
		}(i, entry)
	}
	wg.Wait()

	var inputs []reference.Input
	for _, r := range results {
		if r != nil {
			inputs = append(inputs, *r)
		}
	}
	if withMetadata {
		if err := enrich(inputs); err != nil {
			logError("metadata lookup failed, keeping file names", err)
		}
	}

	lib, err := reference.Prepare(inputs, cfg.Chunk)
	if err != nil {
		return nil, err
	}
	summary := lib.Summary()
	fmt.Printf("Indexed %v tunes into %v chunks (%v files skipped)\n",
		humanize.Comma(int64(summary.NumEntries)),
		humanize.Comma(int64(summary.NumChunks)),
		len(entries)-summary.NumEntries)
	return lib, nil
}

func save(lib *reference.Library) error {
	if err := util.RecreateOutputDir(cfg.IndexDir); err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(store.SnapshotOf(lib))
}
