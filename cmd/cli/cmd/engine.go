// Package cmd provides the CLI commands for measureconvert.
package cmd

import (
	"fmt"

	"measureconvert/adapters/rates"
	"measureconvert/adapters/storage"
	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/detect"
	"measureconvert/core/ratecache"
	"measureconvert/core/units"
	"measureconvert/internal/config"
)

// buildEngine wires C1-C5 from the given config, the way initConfig wires
// logging from the global config. Each subcommand that needs the engine
// calls it from its own RunE.
func buildEngine(cfg *config.Config) (*detect.Detector, *convert.Converter, *ratecache.Service, error) {
	registry := units.New()
	converter := convert.New(registry)
	currCtx := currency.DisambiguationContext{
		CountryCode:       "US",
		LanguageIsEnglish: true,
	}
	detector := detect.New(registry, converter, currCtx)

	store, err := buildStore(cfg.Storage)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build storage backend: %w", err)
	}
	fetcher := rates.NewHTTPFetcher(cfg.HTTP.PrimaryBaseURL, cfg.HTTP.FallbackBaseURL, cfg.HTTP.Timeout)
	cache := ratecache.New(store, fetcher, cfg.RateCache)

	return detector, converter, cache, nil
}

func buildStore(cfg config.StorageConfig) (ratecache.Store, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "file", "":
		return storage.NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
