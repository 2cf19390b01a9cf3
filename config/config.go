package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/notes"
)

type Config struct {
	IndexDir string
	MediaDir string
	// gob or sqlite
	StoreBackend string

	Chunk           chunk.Config
	Band            int
	DurationPenalty float64
	QuantizeStep    float64
	WeightPolicy    notes.WeightPolicy
	// compare tunes by pitch class, ignoring octave jumps
	FoldPitchClass bool
	// 0 scores every chunk
	MaxChunks int

	Port int

	MetadataTable    string
	DynamoDBEndpoint string
	AWSRegion        string

	LogLevel string
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	res, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", model.ErrInvalidConfig, key, v)
	}
	return res, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	res, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", model.ErrInvalidConfig, key, v)
	}
	return res, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	res, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", model.ErrInvalidConfig, key, v)
	}
	return res, nil
}

// LoadDotEnv reads .env if there is one. A missing file is fine.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		IndexDir:         getString("INDEX_PATH", "./out"),
		MediaDir:         os.Getenv("MEDIA_PATH"),
		StoreBackend:     getString("STORE_BACKEND", "gob"),
		WeightPolicy:     notes.WeightPolicy(getString("WEIGHT_POLICY", string(notes.WeightByDuration))),
		MetadataTable:    getString("METADATA_TABLE", "melodex-metadata"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		AWSRegion:        getString("AWS_REGION", "localhost"),
		LogLevel:         getString("LOG_LEVEL", "info"),
	}

	defaults := chunk.DefaultConfig()
	var err error
	if cfg.Chunk.WindowSize, err = getInt("WINDOW_SIZE", defaults.WindowSize); err != nil {
		return cfg, err
	}
	if cfg.Chunk.HopSize, err = getInt("HOP_SIZE", defaults.HopSize); err != nil {
		return cfg, err
	}
	if cfg.Chunk.MinChunkNotes, err = getInt("MIN_CHUNK_NOTES", defaults.MinChunkNotes); err != nil {
		return cfg, err
	}
	if cfg.Band, err = getInt("DTW_BAND", 8); err != nil {
		return cfg, err
	}
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return cfg, err
	}
	if cfg.MaxChunks, err = getInt("MAX_CHUNKS", 0); err != nil {
		return cfg, err
	}
	if cfg.FoldPitchClass, err = getBool("FOLD_PITCH_CLASS", false); err != nil {
		return cfg, err
	}
	if cfg.DurationPenalty, err = getFloat("DURATION_PENALTY", 0); err != nil {
		return cfg, err
	}
	if cfg.QuantizeStep, err = getFloat("QUANTIZE_STEP", 0); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := c.Chunk.Validate(); err != nil {
		return err
	}
	switch c.StoreBackend {
	case "gob", "sqlite":
	default:
		return fmt.Errorf("%w: unknown store backend %q", model.ErrInvalidConfig, c.StoreBackend)
	}
	switch c.WeightPolicy {
	case notes.WeightByDuration, notes.WeightByVelocity, notes.WeightUniform:
	default:
		return fmt.Errorf("%w: unknown weight policy %q", model.ErrInvalidConfig, c.WeightPolicy)
	}
	if c.Band < 0 || c.DurationPenalty < 0 || c.QuantizeStep < 0 || c.MaxChunks < 0 {
		return fmt.Errorf("%w: band, duration penalty, quantize step and max chunks must not be negative", model.ErrInvalidConfig)
	}
	return nil
}

// MediaDirOrErr is the reference MIDI directory, which indexing needs.
func (c Config) MediaDirOrErr() (string, error) {
	if c.MediaDir == "" {
		return "", fmt.Errorf("%w: MEDIA_PATH environment variable is not set", model.ErrInvalidConfig)
	}
	return c.MediaDir, nil
}
