package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	maqamTop          int
	maqamQuarterTones bool
	maqamTemplates    string
)

func init() {
	maqamCmd.Flags().IntVar(&maqamTop, "top", 0, "number of maqamat to show, 0 for all")
	maqamCmd.Flags().BoolVar(&maqamQuarterTones, "quarter-tones", false, "use the quarter-tone catalog")
	maqamCmd.Flags().StringVar(&maqamTemplates, "templates", "", "JSON catalog to use instead of the built-in one")
	rootCmd.AddCommand(maqamCmd)
}

var maqamCmd = &cobra.Command{
	Use:   "maqam FILE",
	Short: "Ranks the maqamat a melody fits",
	Long:  `Ranks the maqamat a melody fits. FILE is a MIDI file or a JSON list of events.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := loadPatterns(maqamTemplates, maqamQuarterTones)
		if err != nil {
			return err
		}
		events, err := readQuery(args[0])
		if err != nil {
			return err
		}
		report, err := newEngine(patterns, nil, false).Maqam(context.Background(), events, maqamTop)
		if err != nil {
			return err
		}
		printMaqamReport(report, patterns)
		return nil
	},
}
