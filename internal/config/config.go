// Package config loads the JSON settings file naming the dataset and
// index directories, the query algorithm, and the posting-list codec
// (spec §6). A flat JSON file decoded with encoding/json matches how
// the teacher's web front end decodes requests (csweb/web.go); no
// config framework is pulled in for a single settings document.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nyxsearch/engine/internal/codec"
	"github.com/nyxsearch/engine/internal/query"
)

// Config is the on-disk settings document.
type Config struct {
	DatasetDir    string `json:"dataset_dir"`
	IndexDir      string `json:"index_dir"`
	Algorithm     string `json:"algorithm"`
	Codec         string `json:"codec"`
	Producers     int    `json:"producers"`
	MaxDictTerms  int    `json:"max_dict_terms"`
	BlockCapacity int    `json:"block_capacity"`
	CacheCapacity int    `json:"cache_capacity"`
	CachePolicy   string `json:"cache_policy"`
	TopK          int    `json:"top_k"`
}

// defaults mirror the values named elsewhere in the spec: 2 producer
// goroutines, a 40,000-term in-memory dictionary cap, 64,000-byte
// blocks, an LFU cache of ~1000 entries, and k=20.
func defaults() Config {
	return Config{
		Algorithm:     query.AlgorithmWAND,
		Codec:         "varbyte",
		Producers:     2,
		MaxDictTerms:  40000,
		BlockCapacity: 64000,
		CacheCapacity: 1000,
		CachePolicy:   "lfu",
		TopK:          20,
	}
}

// Load reads and validates a config file at path, filling unset
// fields from defaults().
func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that gate engine construction: the
// dataset/index directories must be set, and the algorithm/codec
// names must be ones the engine understands.
func (c Config) Validate() error {
	if c.DatasetDir == "" {
		return fmt.Errorf("config: dataset_dir is required")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("config: index_dir is required")
	}
	switch c.Algorithm {
	case query.AlgorithmBoolean, query.AlgorithmWAND, query.AlgorithmBMW, query.AlgorithmMaxScr, query.AlgorithmBMMS:
	default:
		return fmt.Errorf("config: unknown algorithm %q", c.Algorithm)
	}
	if _, err := codec.ParseKind(c.Codec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.CachePolicy {
	case "lru", "lfu", "landlord":
	default:
		return fmt.Errorf("config: unknown cache_policy %q", c.CachePolicy)
	}
	return nil
}

// CodecKind parses the configured codec name, which Validate has
// already confirmed is well-formed.
func (c Config) CodecKind() codec.Kind {
	kind, _ := codec.ParseKind(c.Codec)
	return kind
}
