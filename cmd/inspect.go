package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect ENTRY_ID",
	Short: "Inspects a library entry",
	Long:  `Prints an entry's metadata and every chunk it was cut into.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		entry, ok := lib.Entry(args[0])
		if !ok {
			return fmt.Errorf("no entry %q in library", args[0])
		}

		fmt.Printf("id: %v\n", entry.ID)
		fmt.Printf("title: %v\n", entry.Title)
		if entry.Artist != "" {
			fmt.Printf("artist: %v\n", entry.Artist)
		}
		fmt.Printf("source: %v\n", entry.Source)
		keys := util.GetKeys(entry.Metadata)
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%v: %v\n", key, entry.Metadata[key])
		}
		fmt.Printf("notes: %v\n", entry.Length)

		for _, c := range entry.Chunks {
			var pitches []string
			for _, e := range c.Sequence.Events {
				pitches = append(pitches, fmt.Sprintf("%g", e.Pitch))
			}
			partial := ""
			if c.Partial {
				partial = " (partial)"
			}
			fmt.Printf("chunk %d at note %d, %.2fs%v, median %.1f: %v\n",
				c.Index, c.Offset, c.Onset, partial, c.Sequence.Median, strings.Join(pitches, " "))
		}
		return nil
	},
}
