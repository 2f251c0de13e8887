// Package ratecache is C5, the Rate Cache Service: async currency rate
// fetching with primary+fallback APIs, at-most-one in-flight fetch per
// currency pair, stale-but-usable fallback, and activity-gated refresh.
//
// Unlike core/units, core/convert, core/currency, and core/detect, this
// package is not a pure function library: it owns mutable state (the
// persisted cache, the in-flight fetch map) and performs I/O through the
// Store and RateFetcher collaborators, matching spec §5's description of
// it as the one cooperative-async component of the core.
package ratecache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"measureconvert/internal/config"
	"measureconvert/internal/errors"
	"measureconvert/internal/logging"

	"measureconvert/core/types"
)

const (
	cacheKey    = "currencyRatesCache"
	activityKey = "lastUserActivity"
)

// Store is the persistent key/value contract from spec §6.3. Read errors
// are tolerated by the service (treated as cache-miss); write errors are
// logged and swallowed by the service, not by the Store implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// RateFetcher is the HTTP contract from spec §6.4, already split into its
// primary and fallback shapes. Implementations normalize all rate keys to
// lowercase before returning.
type RateFetcher interface {
	// FetchPrimary returns rates keyed by lowercase code, plus the
	// upstream API's own timestamp when it reports one.
	FetchPrimary(ctx context.Context, base string) (rates map[string]float64, apiTimestampMs *int64, err error)
	// FetchFallback returns rates keyed by lowercase code.
	FetchFallback(ctx context.Context, base string) (rates map[string]float64, err error)
}

// Service is C5.
type Service struct {
	store   Store
	fetcher RateFetcher
	cfg     config.RateCacheConfig

	// nowFunc is overridden in tests to make cacheTimeout/inactivityThreshold
	// boundary behavior (spec §8) deterministic without sleeping.
	nowFunc func() time.Time

	group singleflight.Group

	mu               sync.Mutex
	lastUserActivity int64 // epoch ms, mirrored from the store
}

// New builds a Service. cfg supplies the four durations from spec §4.5.
func New(store Store, fetcher RateFetcher, cfg config.RateCacheConfig) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now()
}

func pairKey(from, to string) string {
	return strings.ToLower(from) + "->" + strings.ToLower(to)
}

// GetCurrencyRate implements spec §4.5's fetch algorithm. At most one
// network fetch is in flight per (from,to) pair at any time; concurrent
// callers for the same pair share the same result via singleflight.
func (s *Service) GetCurrencyRate(ctx context.Context, from, to string) (types.RateResult, error) {
	from = strings.ToLower(from)
	to = strings.ToLower(to)

	v, err, shared := s.group.Do(pairKey(from, to), func() (interface{}, error) {
		return s.fetchOne(ctx, from, to)
	})
	if err != nil {
		return types.RateResult{}, err
	}
	result := v.(types.RateResult)
	if shared {
		logging.Debug("rate request joined an in-flight fetch", zap.String("from", from), zap.String("to", to))
	}
	return result, nil
}

func (s *Service) fetchOne(ctx context.Context, from, to string) (types.RateResult, error) {
	correlationID := uuid.New().String()
	log := logging.WithCorrelationID(correlationID)
	now := s.now()

	cache, err := s.loadCache(ctx)
	if err != nil {
		log.Warn("rate cache load failed, treating as miss", zap.Error(err))
		cache = map[string]types.CacheEntry{}
	}
	entry, hasEntry := cache[from]

	if hasEntry && s.isCacheValid(entry, now) {
		if rate, ok := entry.Rates[to]; ok {
			return types.RateResult{Rate: rate, UsedFallback: entry.UsedFallback, FromCache: true}, nil
		}
	}

	var staleRate float64
	hasStale := false
	if hasEntry {
		if rate, ok := entry.Rates[to]; ok {
			staleRate, hasStale = rate, true
		}
	}

	var entryPtr *types.CacheEntry
	if hasEntry {
		entryPtr = &entry
	}
	if !s.shouldRefreshCache(entryPtr, now) && hasStale {
		return types.RateResult{Rate: staleRate, FromCache: true, Stale: true}, nil
	}

	if rates, apiTS, err := s.fetcher.FetchPrimary(ctx, from); err == nil {
		s.storeEntry(ctx, cache, from, rates, false, apiTS)
		if rate, ok := rates[to]; ok {
			return types.RateResult{Rate: rate, UsedFallback: false}, nil
		}
		log.Warn("primary rate fetch missing requested code, trying fallback", zap.String("from", from), zap.String("to", to))
	} else {
		log.Warn("primary rate fetch failed, trying fallback", zap.String("from", from), zap.Error(err))
	}

	if rates, ferr := s.fetcher.FetchFallback(ctx, from); ferr == nil {
		s.storeEntry(ctx, cache, from, rates, true, nil)
		if rate, ok := rates[to]; ok {
			return types.RateResult{Rate: rate, UsedFallback: true}, nil
		}
		log.Warn("fallback rate fetch missing requested code", zap.String("from", from), zap.String("to", to))
	} else {
		log.Error("fallback rate fetch failed", zap.String("from", from), zap.Error(ferr))
	}

	if hasStale {
		return types.RateResult{Rate: staleRate, FromCache: true, Stale: true}, nil
	}
	return types.RateResult{}, errors.RateUnavailable(strings.ToUpper(from), strings.ToUpper(to))
}

func (s *Service) storeEntry(ctx context.Context, cache map[string]types.CacheEntry, base string, rates map[string]float64, usedFallback bool, apiTimestampMs *int64) {
	lower := make(map[string]float64, len(rates))
	for k, v := range rates {
		lower[strings.ToLower(k)] = v
	}
	cache[base] = types.CacheEntry{
		Rates:        lower,
		TimestampMs:  s.now().UnixMilli(),
		APITimestamp: apiTimestampMs,
		UsedFallback: usedFallback,
	}
	if err := s.saveCache(ctx, cache); err != nil {
		logging.Warn("rate cache write failed", zap.String("base", base), zap.Error(err))
	}
}

// isCacheValid reports whether entry is younger than cacheTimeout. A
// future timestamp yields a negative age and is therefore trivially
// valid; this is documented, intentional behavior (spec §9), not clamped.
func (s *Service) isCacheValid(entry types.CacheEntry, now time.Time) bool {
	age := now.Sub(time.UnixMilli(entry.TimestampMs))
	return age < s.cfg.CacheTimeout
}

// shouldRefreshCache mirrors spec §4.5: nil entries always want a
// refresh; existing entries want one only while the user is active and
// the entry has actually expired.
func (s *Service) shouldRefreshCache(entry *types.CacheEntry, now time.Time) bool {
	if entry == nil {
		return true
	}
	age := now.Sub(time.UnixMilli(entry.TimestampMs))
	return s.isUserActive(now) && age >= s.cfg.CacheTimeout
}

// isUserActive reports whether lastUserActivity is within inactivityThreshold.
func (s *Service) isUserActive(now time.Time) bool {
	last := s.peekActivity()
	age := now.Sub(time.UnixMilli(last))
	return age < s.cfg.InactivityThreshold
}

func (s *Service) peekActivity() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUserActivity
}

// UpdateActivity records the current time as the last user activity,
// mirrored in memory and persisted to the store. Not serialized with
// other operations: a concurrent reader may observe the prior value.
func (s *Service) UpdateActivity(ctx context.Context) {
	now := s.now().UnixMilli()
	s.mu.Lock()
	s.lastUserActivity = now
	s.mu.Unlock()

	data, _ := json.Marshal(now)
	if err := s.store.Set(ctx, activityKey, data); err != nil {
		logging.Warn("activity persist failed", zap.Error(err))
	}
}

// LoadActivity reads the stored lastUserActivity value, defaulting to 0
// (i.e. "never active") when absent or unreadable. Call once at startup;
// UpdateActivity keeps the in-memory mirror current afterward.
func (s *Service) LoadActivity(ctx context.Context) (int64, error) {
	raw, ok, err := s.store.Get(ctx, activityKey)
	if err != nil || !ok {
		s.mu.Lock()
		s.lastUserActivity = 0
		s.mu.Unlock()
		return 0, nil
	}
	var v int64
	if jerr := json.Unmarshal(raw, &v); jerr != nil {
		s.mu.Lock()
		s.lastUserActivity = 0
		s.mu.Unlock()
		return 0, nil
	}
	s.mu.Lock()
	s.lastUserActivity = v
	s.mu.Unlock()
	return v, nil
}

// WarmCache fetches the "usd" base, which yields every rate in one call,
// unless an already-valid usd cache entry exists. Called on install and
// on process startup.
func (s *Service) WarmCache(ctx context.Context) error {
	cache, err := s.loadCache(ctx)
	if err != nil {
		cache = map[string]types.CacheEntry{}
	}
	if entry, ok := cache["usd"]; ok && s.isCacheValid(entry, s.now()) {
		return nil
	}
	rates, apiTS, err := s.fetcher.FetchPrimary(ctx, "usd")
	if err != nil {
		rates, err = s.fetcher.FetchFallback(ctx, "usd")
		if err != nil {
			return errors.Network("warm cache failed on both APIs", err)
		}
		s.storeEntry(ctx, cache, "usd", rates, true, nil)
		return nil
	}
	s.storeEntry(ctx, cache, "usd", rates, false, apiTS)
	return nil
}

// PrefetchIfStale is fire-and-forget, called from UI activity pings. It
// performs no network work while the user is idle.
func (s *Service) PrefetchIfStale(ctx context.Context) {
	now := s.now()
	if !s.isUserActive(now) {
		return
	}
	cache, err := s.loadCache(ctx)
	if err != nil {
		cache = map[string]types.CacheEntry{}
	}
	entry, ok := cache["usd"]
	if !ok {
		go func() {
			if werr := s.WarmCache(ctx); werr != nil {
				logging.Debug("prefetch warm cache failed", zap.Error(werr))
			}
		}()
		return
	}
	age := now.Sub(time.UnixMilli(entry.TimestampMs))
	if age >= s.cfg.StaleThreshold && age < s.cfg.CacheTimeout {
		go func() {
			rates, apiTS, ferr := s.fetcher.FetchPrimary(ctx, "usd")
			if ferr != nil {
				logging.Debug("prefetch refresh failed", zap.Error(ferr))
				return
			}
			c, lerr := s.loadCache(ctx)
			if lerr != nil {
				c = map[string]types.CacheEntry{}
			}
			s.storeEntry(ctx, c, "usd", rates, false, apiTS)
		}()
	}
}

// RefreshCacheIfNeeded is the scheduler-alarm entry point (spec §6.5). It
// is a no-op while the user is inactive; otherwise every cached base
// older than refreshThreshold is re-fetched from the primary API.
// Per-base failures are logged and do not abort the sweep.
func (s *Service) RefreshCacheIfNeeded(ctx context.Context) {
	now := s.now()
	if !s.isUserActive(now) {
		return
	}
	cache, err := s.loadCache(ctx)
	if err != nil {
		logging.Warn("refresh sweep: cache load failed", zap.Error(err))
		return
	}
	for base, entry := range cache {
		age := now.Sub(time.UnixMilli(entry.TimestampMs))
		if age <= s.cfg.RefreshThreshold {
			continue
		}
		rates, apiTS, ferr := s.fetcher.FetchPrimary(ctx, base)
		if ferr != nil {
			logging.Warn("refresh sweep: fetch failed", zap.String("base", base), zap.Error(ferr))
			continue
		}
		s.storeEntry(ctx, cache, base, rates, false, apiTS)
	}
}

// ClearCache removes the cache record from storage, leaving the activity
// record intact.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.Remove(ctx, cacheKey); err != nil {
		return errors.Wrap(errors.TypeStorage, "clear cache failed", err)
	}
	return nil
}

func (s *Service) loadCache(ctx context.Context) (map[string]types.CacheEntry, error) {
	raw, ok, err := s.store.Get(ctx, cacheKey)
	if err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "cache load failed", err)
	}
	if !ok {
		return map[string]types.CacheEntry{}, nil
	}
	var cache map[string]types.CacheEntry
	if err := json.Unmarshal(raw, &cache); err != nil {
		return nil, errors.Wrap(errors.TypeStorage, "cache decode failed", err)
	}
	if cache == nil {
		cache = map[string]types.CacheEntry{}
	}
	return cache, nil
}

func (s *Service) saveCache(ctx context.Context, cache map[string]types.CacheEntry) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return s.store.Set(ctx, cacheKey, data)
}
