// Package main - entry point for the measureconvert HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"measureconvert/adapters/httpapi"
	"measureconvert/adapters/rates"
	"measureconvert/adapters/scheduler"
	"measureconvert/adapters/storage"
	"measureconvert/core/convert"
	"measureconvert/core/currency"
	"measureconvert/core/detect"
	"measureconvert/core/ratecache"
	"measureconvert/core/units"
	"measureconvert/internal/config"
	"measureconvert/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", ":8080", "server address")
	cfgPath := flag.String("config", "", "config file (default is built-in defaults)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("initialize logging: %v", err)
	}

	registry := units.New()
	converter := convert.New(registry)
	currCtx := currency.DisambiguationContext{CountryCode: "US", LanguageIsEnglish: true}
	detector := detect.New(registry, converter, currCtx)

	store, err := buildStore(cfg.Storage)
	if err != nil {
		log.Fatalf("build storage backend: %v", err)
	}
	fetcher := rates.NewHTTPFetcher(cfg.HTTP.PrimaryBaseURL, cfg.HTTP.FallbackBaseURL, cfg.HTTP.Timeout)
	rateCache := ratecache.New(store, fetcher, cfg.RateCache)

	ctx := context.Background()
	if _, err := rateCache.LoadActivity(ctx); err != nil {
		log.Printf("load activity: %v", err)
	}
	if err := rateCache.WarmCache(ctx); err != nil {
		log.Printf("warm cache: %v", err)
	}

	sched := scheduler.NewTickerScheduler(ctx)
	sched.CreateAlarm("refresh-rate-cache", cfg.RateCache.RefreshThreshold, rateCache.RefreshCacheIfNeeded)
	defer sched.Stop()

	server := httpapi.NewServer(detector, converter, rateCache, version)

	fmt.Printf("measureconvert server v%s\n", version)
	fmt.Printf("   listening on %s\n", *addr)

	if err := server.ListenAndServe(*addr); err != nil {
		log.Fatal(err)
	}
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
