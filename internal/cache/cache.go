// Package cache provides an in-memory TTL store for upstream-derived
// responses. Entries are immutable snapshots; expiry is lazy, checked on
// read against an injected clock.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Class partitions cached entries by freshness requirement. Each class
// carries its own TTL.
type Class string

const (
	ClassCurrent     Class = "current"
	ClassHistory     Class = "history"
	ClassForecast    Class = "forecast"
	ClassOverlayWind Class = "overlay_wind"
	ClassOverlayWave Class = "overlay_wave"
)

// defaultTTLs reflect how fast each upstream product actually changes:
// buoy reports land about every 30 minutes, model runs every few hours.
var defaultTTLs = map[Class]time.Duration{
	ClassCurrent:     5 * time.Minute,
	ClassHistory:     30 * time.Minute,
	ClassForecast:    3 * time.Hour,
	ClassOverlayWind: 10 * time.Minute,
	ClassOverlayWave: 30 * time.Minute,
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a class-partitioned TTL cache. The zero value is not usable;
// construct with New.
type Store struct {
	mu      sync.RWMutex
	entries map[Class]map[string]entry
	ttls    map[Class]time.Duration
	clock   clockwork.Clock
}

// New creates a store using the default per-class TTLs. Overrides replace
// the TTL of the named classes only.
func New(clock clockwork.Clock, overrides map[Class]time.Duration) *Store {
	ttls := make(map[Class]time.Duration, len(defaultTTLs))
	for class, ttl := range defaultTTLs {
		ttls[class] = ttl
	}
	for class, ttl := range overrides {
		ttls[class] = ttl
	}

	return &Store{
		entries: make(map[Class]map[string]entry),
		ttls:    ttls,
		clock:   clock,
	}
}

// Get returns the cached value for key within class, or ok=false when the
// entry is absent or past its TTL. Expired entries are left in place for the
// next Put to overwrite.
func (s *Store) Get(class Class, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[class][key]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Put stores value under key with the class TTL, unconditionally replacing
// any previous entry.
func (s *Store) Put(class Class, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.entries[class]
	if !ok {
		m = make(map[string]entry)
		s.entries[class] = m
	}
	m[key] = entry{value: value, expiresAt: s.clock.Now().Add(s.ttls[class])}
}

// ClearAll drops every entry across all classes. This is the only eviction
// path besides natural expiry.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Class]map[string]entry)
}

// Len reports the number of live (unexpired) entries across all classes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	n := 0
	for _, m := range s.entries {
		for _, e := range m {
			if !now.After(e.expiresAt) {
				n++
			}
		}
	}
	return n
}
