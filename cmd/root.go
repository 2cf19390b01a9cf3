package cmd

import (
	"context"
	"log/slog"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/engine"
	"github.com/jsphweid/melodex/logging"
	"github.com/jsphweid/melodex/maqam"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/reference"
	"github.com/jsphweid/melodex/scale"
	"github.com/jsphweid/melodex/sequence"
	"github.com/jsphweid/melodex/store"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "melodex",
	Short: "Melody and maqam matcher",
	Long: `melodex finds which known tune, or which maqam, a monophonic
excerpt most resembles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return LoadConfig()
	},
}

// LoadConfig reads .env and the environment into the shared config.
func LoadConfig() error {
	config.LoadDotEnv()
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	logging.SetLevel(cfg.LogLevel)
	return nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func logError(msg string, err error, attrs ...any) {
	err = xerrors.New(err)
	attrs = append(attrs, slog.Any("error", err))
	logging.GetLogger().ErrorContext(context.Background(), msg, attrs...)
}

func openStore() (store.Store, error) {
	return store.Open(cfg.StoreBackend, cfg.IndexDir)
}

func loadLibrary() (*reference.Library, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return store.LoadLibrary(s)
}

func loadPatterns(path string, quarterTones bool) (*maqam.Library, error) {
	switch {
	case path != "":
		return maqam.LoadFile(path)
	case quarterTones:
		return maqam.QuarterTone(), nil
	}
	return maqam.Default(), nil
}

func sequenceConfig(allShifts bool) sequence.Config {
	res := sequence.DefaultConfig()
	res.Band = cfg.Band
	res.DurationPenalty = cfg.DurationPenalty
	res.FoldPitchClass = cfg.FoldPitchClass
	res.MaxChunks = cfg.MaxChunks
	if allShifts {
		res.Transpositions = sequence.AllTranspositions
	}
	return res
}

func newEngine(patterns *maqam.Library, lib *reference.Library, allShifts bool) *engine.Engine {
	return engine.New(engine.Options{
		Patterns:  patterns,
		Reference: lib,
		Scale:     scale.NewMatcher(scale.DefaultConfig()),
		Sequence:  sequence.NewMatcher(sequenceConfig(allShifts)),
		Normalize: normalize.Options{QuantizeStep: cfg.QuantizeStep},
		Logger:    logging.GetLogger(),
	})
}
