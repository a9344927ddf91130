// Package cache provides in-memory associative stores keyed by city name.
//
// Two flavours exist: an expiring store whose entries carry an absolute
// deadline (weather data), and a non-expiring store whose entries live for
// the process lifetime (time data). Keys are compared in trim-lowercased
// form in both, so "London", "london" and " LONDON " address the same entry.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	value T
	// expiresAt is the zero time for non-expiring entries.
	expiresAt time.Time
}

// Store is a concurrency-safe map of city name to value. Readers proceed
// in parallel; writers exclude readers and other writers.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	expires bool
}

// New creates a store whose entries never expire.
func New[T any]() *Store[T] {
	return &Store[T]{entries: make(map[string]entry[T])}
}

// NewExpiring creates a store whose entries expire ttl after the write.
// A zero ttl makes every entry expire immediately.
func NewExpiring[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{entries: make(map[string]entry[T]), ttl: ttl, expires: true}
}

// Get returns the value stored under city, if present and unexpired.
// Expired entries are left in place; the next Set of the same key
// replaces them.
func (s *Store[T]) Get(city string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[normalizeKey(city)]
	if !ok {
		var zero T
		return zero, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(time.Now()) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under city, replacing any previous entry.
func (s *Store[T]) Set(city string, value T) {
	e := entry[T]{value: value}
	if s.expires {
		e.expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[normalizeKey(city)] = e
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func normalizeKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
