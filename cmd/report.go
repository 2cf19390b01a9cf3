package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/melodex/reference"
	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Prints statistics about the saved reference library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		r := analyze(lib)
		r.indexBytes = indexSize(cfg.IndexDir)
		printReport(r)
		return nil
	},
}

type libraryReport struct {
	numEntries    int
	numChunks     int
	numPartial    int
	totalNotes    uint64
	meanLength    float64
	stdLength     float64
	shortest      int
	longest       int
	chunksPerTune float64
	indexBytes    int64
}

func analyze(lib *reference.Library) libraryReport {
	var report libraryReport
	entries := lib.Entries()
	report.numEntries = len(entries)
	report.numChunks = len(lib.Chunks())
	if len(entries) == 0 {
		return report
	}

	lengths := make([]int, len(entries))
	weights := make([]float64, len(entries))
	report.shortest = entries[0].Length
	for i, e := range entries {
		lengths[i] = e.Length
		weights[i] = float64(e.Length)
		report.shortest = util.Min(report.shortest, e.Length)
		report.longest = util.Max(report.longest, e.Length)
		for _, c := range e.Chunks {
			if c.Partial {
				report.numPartial++
			}
		}
	}
	report.totalNotes = util.Sum(lengths)
	report.meanLength, report.stdLength = stat.MeanStdDev(weights, nil)
	report.chunksPerTune = float64(report.numChunks) / float64(report.numEntries)
	return report
}

func indexSize(dir string) int64 {
	var total int64
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

func printReport(r libraryReport) {
	fmt.Printf("tunes: %v\n", humanize.Comma(int64(r.numEntries)))
	fmt.Printf("chunks: %v (%v partial, %.1f per tune)\n", humanize.Comma(int64(r.numChunks)), r.numPartial, r.chunksPerTune)
	fmt.Printf("notes: %v\n", humanize.Comma(int64(r.totalNotes)))
	fmt.Printf("tune length: mean %.1f, std %.1f, min %v, max %v\n", r.meanLength, r.stdLength, r.shortest, r.longest)
	fmt.Printf("index size: %v\n", humanize.Bytes(uint64(r.indexBytes)))
}
